package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-GiftMinder/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go GiftMinder"
	AppID             = "com.github.tartampluch.go-giftminder"
	KeyringService    = "com.github.tartampluch.go-giftminder"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	SettingsFileName  = "settings.yaml"
	PeopleFileName    = "people.yaml"
	TempFilePattern   = ".giftminder-*.tmp"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs and settings.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagConfig       = "config"
	FlagOnce         = "once"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescConfig   = "Path to the settings file (default: user config dir)"
	FlagDescOnce     = "Run a single evaluation cycle and exit"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// SupportedLanguages defines the list of available reminder languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	// Occasion labels
	TKeyLabelBirthday    = "label_birthday"
	TKeyLabelAnniversary = "label_anniversary"
	TKeyLabelWomensDay   = "label_womens_day"
	TKeyLabelValentines  = "label_valentines_day"
	TKeyLabelSurprise    = "label_just_because"
	TKeyLabelEvent       = "label_event"

	// Reminder titles
	TKeyTitleToday = "title_today"   // Requires Label
	TKeyTitleIn    = "title_in_days" // Requires Label, Count

	// Reminder bodies
	TKeyDescGiftToday    = "desc_gift_today"      // Requires Name, Label
	TKeyDescGiftIn       = "desc_gift_in_days"    // Requires Name, Label, Count
	TKeyDescFlowersToday = "desc_flowers_today"   // Requires Name, Label
	TKeyDescFlowersIn    = "desc_flowers_in_days" // Requires Name, Label, Count

	// Calendar
	TKeyEventTitle = "event_title" // Requires Name, Label
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeFile  = "file"  // YAML people file
	SourceModeLocal = "local" // local .vcf file
	SourceModeWeb   = "web"   // CardDAV / WebDAV

	DefaultPort                = "18080"
	DefaultListen              = LocalhostBindAddr + AddrSeparator + DefaultPort
	DefaultTimezone            = "Local"
	DefaultLanguage            = "en"
	DefaultEvaluateCron        = "5 0 * * *"
	DefaultDeliverCron         = "*/15 * * * *"
	DefaultUpcomingHorizonDays = 30
	DefaultLeapYear            = 2000 // Leap year fallback for dates like --02-29
	UIDSalt                    = "go-giftminder-v1-"
	MinutesPerDay              = 24 * 60
)

// FlowerAlarmMinutes are the calendar alarms of a flower event: one hour
// and one day before.
var FlowerAlarmMinutes = []int{60, MinutesPerDay}

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go GiftMinder//Scheduler//EN"
	ICalCalName   = "Gifts & Flowers"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "giftminder"

	// iCal Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRRule       = "RRULE"
	PropCategories  = "CATEGORIES"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	// vCard Fields
	VCardBDAY        = "BDAY"
	VCardAnniversary = "ANNIVERSARY"
	VCardFN          = "FN"
	VCardN           = "N"
	VCardUID         = "UID"
	VCardCategories  = "CATEGORIES"
	VCardPhoto       = "PHOTO"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY / ANNIVERSARY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// ID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s@%s"
	FormatDateID    = "%s-%s"
	CategorySep     = ","
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	RouteUpcoming       = "/upcoming"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty    = "configuration error: local path is empty"
	ErrWebURLEmpty       = "configuration error: web URL is empty"
	ErrPeopleFileEmpty   = "configuration error: people file path is empty"
	ErrFetcherMissing    = "internal error: network fetcher is not initialized"
	ErrModeUnsupport     = "configuration error: unsupported source mode"
	ErrSettingsPathEmpty = "configuration error: settings path is empty"
	ErrSettingsNil       = "configuration error: settings are nil"
	ErrSettingsRead      = "failed to read settings file"
	ErrSettingsParse     = "failed to parse settings file"
	ErrSettingsWrite     = "failed to write settings file"
	ErrTimezone          = "configuration error: unknown timezone"
	ErrCronSpec          = "configuration error: invalid cron expression"
	ErrServerStartup     = "server startup failed"
	ErrServerShutdown    = "server shutdown failed"
	ErrListenRequired    = "server listen address is required"
	ErrInvalidURL        = "invalid URL structure"
	ErrProtocol          = "unsupported protocol scheme (http/https only)"
	ErrRequestBuild      = "failed to create request"
	ErrNetwork           = "network error during fetch"
	ErrHTTPStatus        = "server returned unexpected status"
	ErrVCardParse        = "failed to parse vCard stream"
	ErrPeopleRead        = "failed to read people file"
	ErrPeopleParse       = "failed to parse people file"
	ErrICalEncode        = "failed to encode iCalendar data"
	ErrJSONEncode        = "failed to encode upcoming occasions"
	ErrDateParse         = "unable to parse date"
	ErrLogFile           = "failed to open log file"
	ErrCacheDir          = "could not determine user cache dir"
	ErrConfigDir         = "could not determine user config dir"
	ErrCreateDir         = "could not create app directory"
	ErrAppFailed         = "application failed unexpectedly"
	ErrWriteResp         = "failed to write response body"
	ErrLocalesAccess     = "failed to access embedded locales"
	ErrLocaleLoad        = "failed to load locale file"
	ErrNotifSchedule     = "failed to schedule notification"
	ErrNotifCancel       = "failed to cancel notification"
	ErrNotifNotFound     = "notification not found"
	ErrCalendarAdd       = "failed to add calendar event"
	ErrCalendarRemove    = "failed to remove calendar event"
	ErrEventNotFound     = "calendar event not found"
	ErrReminderNotFound  = "reminder not found"
	ErrSyncFailed        = "sync cycle failed"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Messages
// -----------------------------------------------------------------------------

const (
	FallbackName = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgSyncSuccess     = "Synchronization completed successfully."
	MsgSyncStarted     = "Synchronization started..."
	MsgSyncPartial     = "Some reminders could not be activated"
	MsgWorkerStart     = "Background worker started"
	MsgWorkerStop      = "Worker stopping due to context cancellation"
	MsgJobScheduled    = "Cron job scheduled"
	MsgJobFailed       = "Scheduled job failed"
	MsgJobDone         = "Scheduled job completed"
	MsgDeliverReq      = "Delivery requested"
	MsgAppStop         = "Application stopped gracefully"
	MsgSkippedCard     = "Skipping malformed vCard"
	MsgSkippedDate     = "Skipping invalid date format"
	MsgSkippedOccasion = "Skipping occasion that could not be resolved"
	MsgUnknownDateType = "Unknown date type, treating as custom"
	MsgPeopleLoaded    = "People loaded"
	MsgPlanReady       = "Evaluation plan computed"
	MsgAppStarting     = "Starting application"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Feed cache updated"
	MsgFeedRendered    = "Calendar feed rendered"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgPassFail        = "Password retrieval failed (might be empty)"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgSettingsCreated = "Default settings written"
	MsgSettingsLoaded  = "Settings loaded"
	MsgNotifScheduled  = "Notification scheduled"
	MsgNotifDelivered  = "Reminder due"
	MsgNotifCancelled  = "Notification cancelled"
	MsgReminderStale   = "Reminder no longer planned, cancelling"
	MsgEventAdded      = "Calendar event added"
	MsgEventRemoved    = "Calendar event removed"
	MsgReminderRead    = "Reminder marked as read"
	MsgRemindersSynced = "Reminders synchronized"
	MsgFetchStart      = "Initiating vCard download"
	MsgFetchDownload   = "vCards downloading"
	MsgFetchBadStatus  = "Server returned error status"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent  = "component"
	LogKeyError      = "error"
	LogKeyURL        = "url"
	LogKeyStatus     = "status_code"
	LogKeyFile       = "file"
	LogKeyLang       = "lang"
	LogKeyKey        = "key"
	LogKeyListen     = "listen"
	LogKeyMode       = "mode"
	LogKeySpec       = "spec"
	LogKeyJob        = "job"
	LogKeyUser       = "user"
	LogKeyTotal      = "total_cards"
	LogKeyPeople     = "people"
	LogKeyOccasions  = "occasions"
	LogKeyReminders  = "reminders"
	LogKeyDue        = "due"
	LogKeySkipped    = "skipped"
	LogKeyCancelled  = "cancelled"
	LogKeyEvents     = "events"
	LogKeySizeBytes  = "size_bytes"
	LogKeyLength     = "content_length"
	LogKeyETag       = "etag"
	LogKeyValue      = "value"
	LogKeyStats      = "stats"
	LogKeyCount      = "count"
	LogKeyName       = "name"
	LogKeyPersonID   = "person_id"
	LogKeyReminderID = "reminder_id"
	LogKeyHandle     = "handle"
	LogKeyKind       = "kind"
	LogKeyTitle      = "title"
	LogKeyBody       = "body"
	LogKeyDate       = "date"
	LogKeyToday      = "today"
	LogKeyTimezone   = "timezone"
	LogKeyDuration   = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyBuilt   = "built"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompApp      = "app"
	CompPeople   = "people"
	CompCalendar = "calendar"
	CompNotify   = "notify"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompWorker   = "worker"
	CompMain     = "main"
	CompI18n     = "i18n"
	CompSettings = "settings"
)

// -----------------------------------------------------------------------------
// Cron Job Names
// -----------------------------------------------------------------------------

const (
	JobEvaluate = "evaluate"
	JobDeliver  = "deliver"
)
