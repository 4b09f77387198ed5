package constants

import "time"

const (
	AppName            = "ledger"
	DefaultKeyringUser = "database-connection"
	S3SecretKeyringKey = "s3-secret-key"
	DefaultConfigDir   = "~/.config/ledger"
	DefaultStorePath   = "~/.config/ledger/ledger.db"
	DefaultConfigFile  = "~/.config/ledger/config.yaml"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimestampFormat is used for absolute timestamps in reports and listings
	TimestampFormat = "Jan 2, 2006 3:04 PM"

	// ShortDateFormat and ShortDateYearFormat render absolute dates in relative-time output
	ShortDateFormat     = "Jan 2"
	ShortDateYearFormat = "Jan 2, 2006"

	// MonthBucketFormat labels month pattern buckets ("Jan 24")
	MonthBucketFormat = "Jan 06"
	// WeekBucketFormat labels week pattern buckets by their Sunday ("Jan 7 '24")
	WeekBucketFormat = "Jan 2 '06"
	// ArchiveMonthFormat labels archive months ("January 2024")
	ArchiveMonthFormat = "January 2006"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "ledger-"

	// AttachmentsDirName holds local attachment content beside the store
	AttachmentsDirName = "attachments"

	// SlotWriteHistory caps the rows kept in the slot_writes table
	SlotWriteHistory = 1000

	// Export constants
	ExportVersion = "1.0"
	ReportRule    = "========================================"
)

// Storage slot keys. Each slot holds one JSON array of records or one settings object.
const (
	SlotEntries         = "entries"
	SlotSettings        = "settings"
	SlotReviewNotes     = "review-notes"
	SlotUserThemes      = "user-themes"
	SlotThreads         = "threads"
	SlotThreadLinks     = "thread-links"
	SlotTrustedContacts = "trusted-contacts"
	SlotSharedEntries   = "shared-entries"
	SlotTrustedNotes    = "trusted-notes"
)

// AllSlots lists every slot in export order.
var AllSlots = []string{
	SlotEntries,
	SlotSettings,
	SlotReviewNotes,
	SlotUserThemes,
	SlotThreads,
	SlotThreadLinks,
	SlotTrustedContacts,
	SlotSharedEntries,
	SlotTrustedNotes,
}

const (
	// EditWindow is how long after creation an entry's primary fields stay mutable
	EditWindow = 24 * time.Hour

	// MaxActiveContacts caps the number of non-revoked trusted contacts
	MaxActiveContacts = 3

	// MaxShareReasonLength and MaxTrustedNoteLength bound free text on shares, in runes
	MaxShareReasonLength = 280
	MaxTrustedNoteLength = 500
)
