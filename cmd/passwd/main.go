// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command passwd reads the owner password from stdin and prints the bcrypt
// hash to put in OWNER_PASSWORD_HASH.
//
//	echo -n 'my password' | go run ./cmd/passwd
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/taibuivan/bookshelf/internal/platform/sec"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		log.Error("password_read_failed", slog.Any("error", err))
		os.Exit(1)
	}

	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		log.Error("password_empty")
		os.Exit(1)
	}

	hash, err := sec.HashPassword(password)
	if err != nil {
		log.Error("password_hash_failed", slog.Any("error", err))
		os.Exit(1)
	}

	fmt.Println(hash)
}
