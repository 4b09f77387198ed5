package entries

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/journal"
	"github.com/julianstephens/ledger/internal/models"
)

type AttachAddCmd struct {
	ID   string `arg:"" help:"Entry id or unique prefix."`
	Path string `arg:"" type:"existingfile" help:"File to attach."`
	Mime string `help:"MIME type. Detected from the file when omitted."`
}

func (c *AttachAddCmd) Run(ctx *cli.Context) error {
	entry, err := cli.ResolveEntry(ctx, c.ID)
	if err != nil {
		return err
	}

	f, err := os.Open(c.Path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	mimeType := c.Mime
	if mimeType == "" {
		if mimeType, err = detectMime(f); err != nil {
			return err
		}
	}

	att, err := ctx.Journal.AttachFile(ctx.Background(), entry.ID, filepath.Base(c.Path), mimeType, f)
	if errors.Is(err, journal.ErrNoBlobStore) {
		return fmt.Errorf("attachments are disabled: set --attachments-dir or configure S3")
	}
	if err != nil {
		return fmt.Errorf("failed to attach file: %w", err)
	}
	if att == nil {
		return fmt.Errorf("entry not found: %s", c.ID)
	}

	ctx.Println(cli.Success(fmt.Sprintf("Attached %s (%s) to entry %s", att.Filename, humanize.Bytes(uint64(att.Size)), cli.ShortID(entry.ID))))
	return nil
}

// detectMime guesses from the extension, then sniffs the first bytes and rewinds.
func detectMime(f *os.File) (string, error) {
	if t := mime.TypeByExtension(filepath.Ext(f.Name())); t != "" {
		return t, nil
	}
	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind file: %w", err)
	}
	return http.DetectContentType(head[:n]), nil
}

type AttachRemoveCmd struct {
	ID         string `arg:"" help:"Entry id or unique prefix."`
	Attachment string `arg:"" help:"Attachment id or unique prefix."`
}

func (c *AttachRemoveCmd) Run(ctx *cli.Context) error {
	entry, err := cli.ResolveEntry(ctx, c.ID)
	if err != nil {
		return err
	}
	att, err := cli.Resolve(entry.Attachments, func(a models.Attachment) string { return a.ID }, c.Attachment, "attachment")
	if err != nil {
		return err
	}

	bg := ctx.Background()
	var removed *models.Attachment
	if ctx.Journal.Blobs() != nil {
		removed, err = ctx.Journal.DetachFile(bg, entry.ID, att.ID)
	} else {
		// Metadata only; the content is not ours to delete
		removed, err = ctx.Journal.RemoveAttachment(bg, entry.ID, att.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to remove attachment: %w", err)
	}
	if removed == nil {
		return fmt.Errorf("attachment not found: %s", c.Attachment)
	}

	ctx.Println(cli.Success(fmt.Sprintf("Removed %s from entry %s", removed.Filename, cli.ShortID(entry.ID))))
	return nil
}
