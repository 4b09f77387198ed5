package system

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/keyring"
	"github.com/julianstephens/ledger/internal/storage/postgres"
)

// KeyringSetCmd stores database connection credentials in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !postgres.IsConnString(cmd.ConnectionString) && !strings.Contains(cmd.ConnectionString, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		ctx.Println("⚠️  Warning: Connection string contains embedded credentials.")
		ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
		ctx.Println("   If you prefer to keep passwords separate, consider using .pgpass instead.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	ctx.Println("✓ Connection string stored successfully in OS keyring")
	ctx.Println("  ledger will use it whenever --store is left at its default")
	return nil
}

// KeyringGetCmd retrieves database connection credentials from the OS keyring
type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'ledger keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}

	ctx.Println("Connection string retrieved from keyring:")
	ctx.Println(maskPassword(connStr))
	return nil
}

// KeyringDeleteCmd removes database connection credentials from the OS keyring
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}

	ctx.Println("✓ Connection string deleted from OS keyring")
	return nil
}

// KeyringS3SecretCmd stores or removes the object storage secret key.
type KeyringS3SecretCmd struct {
	Secret string `arg:"" optional:"" help:"S3 secret access key. Prompted for when omitted on a terminal."`
	Delete bool   `help:"Remove the stored secret instead."`
}

func (cmd *KeyringS3SecretCmd) Run(ctx *cli.Context) error {
	if cmd.Delete {
		if err := keyring.DeleteS3SecretKey(); err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return errors.New("no S3 secret key found in keyring")
			}
			return fmt.Errorf("failed to delete S3 secret key: %w", err)
		}
		ctx.Println("✓ S3 secret key deleted from OS keyring")
		return nil
	}

	secret := cmd.Secret
	if secret == "" {
		var err error
		if secret, err = promptSecret(ctx); err != nil {
			return err
		}
	}
	if err := keyring.SetS3SecretKey(secret); err != nil {
		return fmt.Errorf("failed to store S3 secret key in keyring: %w", err)
	}
	ctx.Println("✓ S3 secret key stored successfully in OS keyring")
	return nil
}

// promptSecret reads the secret without echo. Only an interactive stdin is prompted.
func promptSecret(ctx *cli.Context) (string, error) {
	fd := int(os.Stdin.Fd())
	if ctx.In != nil || !term.IsTerminal(fd) {
		return "", errors.New("secret key is required")
	}
	ctx.Printf("S3 secret key: ")
	b, err := term.ReadPassword(fd)
	ctx.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	if s := strings.TrimSpace(string(b)); s != "" {
		return s, nil
	}
	return "", errors.New("secret key is required")
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	ctx.Println("✓ OS keyring is available")

	if _, err := keyring.GetConnectionString(); err == nil {
		ctx.Println("✓ Connection string is stored in keyring")
	} else if errors.Is(err, keyring.ErrNotFound) {
		ctx.Println("ℹ No connection string stored in keyring")
	}
	if _, err := keyring.GetS3SecretKey(); err == nil {
		ctx.Println("✓ S3 secret key is stored in keyring")
	} else if errors.Is(err, keyring.ErrNotFound) {
		ctx.Println("ℹ No S3 secret key stored in keyring")
	}
	return nil
}

// maskPassword masks passwords in connection strings for display
func maskPassword(connStr string) string {
	if postgres.IsConnString(connStr) {
		if idx := strings.Index(connStr, "://"); idx != -1 {
			remaining := connStr[idx+3:]
			// The last @ separates user info from host
			if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
				userInfo := remaining[:atIdx]
				if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
					return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
				}
			}
		}
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		masked := make([]string, 0, len(parts))
		for _, part := range parts {
			if strings.HasPrefix(part, "password=") {
				masked = append(masked, "password=****")
			} else {
				masked = append(masked, part)
			}
		}
		return strings.Join(masked, " ")
	}

	return connStr
}
