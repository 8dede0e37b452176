// Command create-user seeds or removes an account directly through the
// configured user store. It reads the same environment as the API server.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/carepredict/authapi/internal/auth"
	"github.com/carepredict/authapi/internal/config"
	"github.com/carepredict/authapi/internal/handler/dto"
	"github.com/carepredict/authapi/internal/repository"
	"github.com/carepredict/authapi/internal/service"
	"github.com/carepredict/authapi/internal/store"
)

type output struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Driver   string `json:"driver"`
}

func main() {
	var (
		username      = flag.String("username", "", "Username for the new account")
		email         = flag.String("email", "", "Email for the new account (or the account to delete)")
		passwordStdin = flag.Bool("password-stdin", false, "Read the password from the first line of stdin")
		remove        = flag.Bool("delete", false, "Delete the account with -email instead of creating one")
		format        = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail("load config:", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opened, err := store.Open(ctx, cfg, logger)
	if err != nil {
		fail("open store:", err)
	}
	defer func() { _ = opened.Close(context.Background()) }()

	if *remove {
		if err := deleteUser(ctx, opened.Store, *email); err != nil {
			fail("delete user:", err)
		}
		fmt.Println("deleted", *email)
		return
	}

	password := os.Getenv("CREATE_USER_PASSWORD")
	if *passwordStdin {
		password, err = readPassword(os.Stdin)
		if err != nil {
			fail("read password:", err)
		}
	}

	input, err := dto.SignupRequest{Username: *username, Email: *email, Password: password}.Validate()
	if err != nil {
		fail("invalid input:", err)
	}

	hasher := auth.NewHasher(auth.HashParams{
		Time:    cfg.HashIterations,
		Memory:  cfg.HashMemoryKiB,
		Threads: cfg.HashThreads,
	})
	codec, err := auth.NewTokenCodec([]byte(cfg.SecretKey))
	if err != nil {
		fail("token codec:", err)
	}
	svc, err := service.NewAuthService(opened.Store, hasher, codec, service.WithLogger(logger))
	if err != nil {
		fail("auth service:", err)
	}

	user, err := svc.Signup(ctx, input)
	if err != nil {
		fail("create user:", err)
	}

	out := output{UserID: user.ID, Username: user.Username, Email: user.Email, Driver: opened.Driver}
	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.UserID)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fail("invalid format:", errors.New("use plain or json"))
	}
}

func deleteUser(ctx context.Context, users store.UserStore, email string) error {
	if email == "" {
		return errors.New("-email is required")
	}
	user, err := users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("no user with email %s", email)
		}
		return err
	}
	return users.DeleteUser(ctx, user.ID)
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func fail(msg string, err error) {
	fmt.Fprintln(os.Stderr, msg, err)
	os.Exit(1)
}
