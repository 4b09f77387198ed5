package sharing

import (
	"fmt"
	"strings"

	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/views"
)

type ContactAddCmd struct {
	Name   []string `arg:"" help:"Display name."`
	Method string   `short:"m" help:"How to reach them (email, phone, ...)."`
}

func (c *ContactAddCmd) Run(ctx *cli.Context) error {
	contact, err := ctx.Journal.AddTrustedContact(ctx.Background(), strings.Join(c.Name, " "), c.Method)
	if err != nil {
		return fmt.Errorf("failed to add trusted contact: %w", err)
	}
	if contact == nil {
		return fmt.Errorf("you already have %d trusted hands; revoke one before adding another", constants.MaxActiveContacts)
	}
	ctx.Println(cli.Success(fmt.Sprintf("Added %s as a trusted hand (%s)", contact.DisplayName, cli.ShortID(contact.ID))))
	return nil
}

type ContactRevokeCmd struct {
	ID string `arg:"" help:"Contact id or unique prefix."`
}

func (c *ContactRevokeCmd) Run(ctx *cli.Context) error {
	contact, err := cli.ResolveContact(ctx, c.ID)
	if err != nil {
		return err
	}
	if !contact.IsActive() {
		ctx.Printf("%s is already revoked.\n", contact.DisplayName)
		return nil
	}

	revoked, err := ctx.Journal.RevokeTrustedContact(ctx.Background(), contact.ID)
	if err != nil {
		return fmt.Errorf("failed to revoke trusted contact: %w", err)
	}
	if revoked == nil {
		return fmt.Errorf("trusted contact not found: %s", c.ID)
	}
	ctx.Println(cli.Success(fmt.Sprintf("Revoked %s. Past shares are kept.", revoked.DisplayName)))
	return nil
}

type ContactListCmd struct {
	All bool `help:"Include revoked contacts."`
}

func (c *ContactListCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()
	contacts := ctx.Journal.ListTrustedContacts(bg)
	active := ctx.Journal.ActiveContacts(bg)

	shared := make(map[string]int)
	for _, s := range ctx.Journal.ListShares(bg) {
		shared[s.TrustedContactID]++
	}

	ctx.Printf("Trusted hands (%d of %d active)\n", len(active), constants.MaxActiveContacts)
	loc := ctx.Journal.Location(bg)
	listed := 0
	for _, contact := range contacts {
		if !c.All && !contact.IsActive() {
			continue
		}
		listed++
		state := ""
		if !contact.IsActive() {
			state = " " + cli.Muted("revoked "+views.Timestamp(*contact.RevokedAt, loc))
		}
		ctx.Printf("  %s  %s%s\n", cli.Muted(cli.ShortID(contact.ID)), contact.DisplayName, state)
		if contact.ContactMethod != "" {
			ctx.Printf("      %s\n", contact.ContactMethod)
		}
		ctx.Printf("      %s\n", cli.Muted(fmt.Sprintf("%d shared", shared[contact.ID])))
	}
	if listed == 0 {
		ctx.Println("  (none)")
	}
	return nil
}
