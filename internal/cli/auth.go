package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage authentication with the company backend.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the company backend",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout and clear the local session",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account on the company backend",
	RunE:  runRegister,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)

	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("server", "", "Backend URL (saved into the session)")
	registerCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().String("company", "", "Company name to register under")
}

func promptCredentials(cmd *cobra.Command) (string, string, error) {
	email, _ := cmd.Flags().GetString("email")

	reader := bufio.NewReader(os.Stdin)
	if email == "" {
		fmt.Print("Email: ")
		line, _ := reader.ReadString('\n')
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return "", "", fmt.Errorf("email is required")
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimSpace(string(raw))
	if password == "" {
		return "", "", fmt.Errorf("password is required")
	}
	return email, password, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if server, _ := cmd.Flags().GetString("server"); server != "" {
		c.Session.ServerURL = strings.TrimRight(server, "/")
		c.API.SetBaseURL(c.Session.ServerURL)
	}

	email, password, err := promptCredentials(cmd)
	if err != nil {
		return err
	}

	fmt.Println("🔄 Logging in...")
	if err := c.Login(context.Background(), email, password); err != nil {
		return err
	}

	fmt.Println("✅ Logged in successfully!")
	fmt.Printf("   Company: %s\n", c.Session.CompanyID)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := c.Logout(); err != nil {
		return err
	}
	fmt.Println("✅ Logged out.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	email, password, err := promptCredentials(cmd)
	if err != nil {
		return err
	}
	company, _ := cmd.Flags().GetString("company")

	fmt.Println("🔄 Creating account...")
	if err := c.Register(context.Background(), email, password, company); err != nil {
		return err
	}

	fmt.Println("✅ Account created and logged in!")
	return nil
}
