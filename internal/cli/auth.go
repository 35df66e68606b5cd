package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/existflow/chantier/internal/remote"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long: `Manage authentication with the chantier server.

Remote mode ('--mode remote') reads and writes the server's data with the
session saved by 'chantier auth login'.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from the server",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account on the server",
	RunE:  runRegister,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE:  runAuthStatus,
}

var authServer string

func init() {
	authCmd.PersistentFlags().StringVar(&authServer, "server", "", "Server URL (saved with the session)")

	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(statusCmd)
}

// authClient loads the session and applies --server
func authClient() (*remote.Client, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	if authServer != "" {
		if err := client.SetServer(authServer); err != nil {
			return nil, err
		}
	}
	return client, nil
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(label string) string {
	fmt.Print(label)
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return string(passwordBytes)
}

func runLogin(cmd *cobra.Command, args []string) error {
	client, err := authClient()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	email := prompt(reader, "Email: ")
	password := promptPassword("Password: ")

	fmt.Printf("🔄 Logging in to %s...\n", client.Session().ServerURL)
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := client.Login(ctx, email, password); err != nil {
		return err
	}

	fmt.Println("✅ Logged in successfully!")
	if appConfig.Mode != "remote" {
		fmt.Println("Use '--mode remote' to work with the server's data.")
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	client, err := authClient()
	if err != nil {
		return err
	}

	if !client.IsLoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}

	if err := client.Logout(); err != nil {
		return err
	}

	fmt.Println("✅ Logged out successfully.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	client, err := authClient()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	name := prompt(reader, "Name: ")
	email := prompt(reader, "Email: ")
	password := promptPassword("Password: ")
	confirm := promptPassword("Confirm Password: ")

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	fmt.Println("🔄 Creating account...")
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := client.Register(ctx, name, email, password); err != nil {
		return err
	}

	fmt.Println("✅ Account created and logged in!")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	client, err := authClient()
	if err != nil {
		return err
	}

	s := client.Session()
	fmt.Printf("Server: %s\n", s.ServerURL)
	fmt.Printf("Mode:   %s\n", appConfig.Mode)
	if !client.IsLoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	user, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("session check failed: %w", err)
	}
	fmt.Printf("User:   %s <%s>\n", user.Name, user.Email)
	return nil
}
