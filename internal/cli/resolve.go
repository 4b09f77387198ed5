package cli

import "github.com/julianstephens/ledger/internal/models"

func ResolveEntry(ctx *Context, ref string) (models.Entry, error) {
	return Resolve(ctx.Journal.ListEntries(ctx.Background()), func(e models.Entry) string { return e.ID }, ref, "entry")
}

func ResolveThread(ctx *Context, ref string) (models.ResponsibilityThread, error) {
	return Resolve(ctx.Journal.ListThreads(ctx.Background()), func(t models.ResponsibilityThread) string { return t.ID }, ref, "thread")
}

func ResolveContact(ctx *Context, ref string) (models.TrustedContact, error) {
	return Resolve(ctx.Journal.ListTrustedContacts(ctx.Background()), func(c models.TrustedContact) string { return c.ID }, ref, "trusted contact")
}

func ResolveShare(ctx *Context, ref string) (models.SharedEntry, error) {
	return Resolve(ctx.Journal.ListShares(ctx.Background()), func(s models.SharedEntry) string { return s.ID }, ref, "share")
}
