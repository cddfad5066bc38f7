// Command signin stores API credentials for the console and the import tool
// without going through the browser.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/debemdeboas/the-press/internal/api"
	"github.com/debemdeboas/the-press/internal/auth"
	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/db"
)

func main() {
	signOut := flag.Bool("signout", false, "Forget the stored credentials")
	flag.Parse()

	promptStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	outputStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	fail := func(msg string, err error) {
		fmt.Fprintln(os.Stderr, errStyle.Render(msg+": "+err.Error()))
		os.Exit(1)
	}

	config.LoadEnv()
	if err := config.LoadConfig(config.Env(config.EnvConfigPath, "config.yaml")); err != nil {
		fail("Error loading config", err)
	}

	ctx := context.Background()
	sqlite := db.NewSQLite(config.AppConfig.Database.Path)
	if err := sqlite.Init(ctx); err != nil {
		fail("Error opening database", err)
	}
	defer sqlite.Close()

	store := auth.NewTokenStore(sqlite)
	client := api.New(config.AppConfig.API.BaseURL, store, api.WithTimeout(config.AppConfig.API.Timeout))
	provider := auth.NewProvider(store, client)

	if *signOut {
		if err := provider.SignOut(ctx); err != nil {
			fail("Error signing out", err)
		}
		fmt.Println(outputStyle.Render("Signed out"))
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	read := func(prompt string) string {
		fmt.Print(promptStyle.Render(prompt))
		if !scanner.Scan() {
			os.Exit(1)
		}
		return strings.TrimSpace(scanner.Text())
	}

	fmt.Println(outputStyle.Render("Signing in to " + client.BaseURL()))
	creds := api.Credentials{
		Email:    read("Email: "),
		Password: read("Password: "),
	}

	account, err := provider.SignIn(ctx, creds)
	if err != nil {
		fail(api.Message(err, config.ErrSignIn), err)
	}
	fmt.Println(outputStyle.Render("Signed in as " + account.DisplayName()))
}
