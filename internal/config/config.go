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

// UserAgent identifies the HTTP client used by the vCard importer.
var UserAgent = "AI-Fortune-Teller/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "AI Fortune Teller"
	AppID             = "com.github.bigfamingjia.ai-fortune-teller"
	BinaryName        = "fortune"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	ExtICS            = ".ics"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	// ExitCodeInput is returned when the birth data itself was rejected.
	ExitCodeInput = 2
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Commands, Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	CmdChart   = "chart"
	CmdTerms   = "terms"
	CmdImport  = "import"
	CmdServe   = "serve"
	CmdVersion = "version"

	CmdDescRoot    = "Four Pillars, Zi Wei Dou Shu and Qi Men Dun Jia charts from a birth moment"
	CmdDescChart   = "Compute the charts of one birth moment"
	CmdDescTerms   = "Export the 24 solar terms of a year as iCalendar"
	CmdDescImport  = "Compute charts for every contact of a vCard file or URL"
	CmdDescServe   = "Serve charts over a local read-only HTTP API"
	CmdDescVersion = "Show application version and exit"

	FlagDebug  = "debug"
	FlagCities = "cities"
	FlagDate   = "date"
	FlagTime   = "time"
	FlagTZ     = "tz"
	FlagLon    = "lon"
	FlagCity   = "city"
	FlagGender = "gender"
	FlagQimen  = "qimen"
	FlagEoT    = "eot"
	FlagZiHour = "zi-hour"
	FlagMethod = "method"
	FlagLang   = "lang"
	FlagJSON   = "json"
	FlagYear   = "year"
	FlagOutput = "output"
	FlagFile   = "file"
	FlagURL    = "url"
	FlagUser   = "user"
	FlagPort   = "port"
	FlagLuck   = "luck-dir"

	FlagDescDebug  = "Enable debug logging with source locations"
	FlagDescCities = "YAML file with extra or overriding cities"
	FlagDescDate   = "Civil birth date (YYYY-MM-DD)"
	FlagDescTime   = "Civil birth time (HH:MM or HH:MM:SS)"
	FlagDescTZ     = "UTC offset of the civil time, e.g. +08:00"
	FlagDescLon    = "Longitude of the birth place in degrees, east positive"
	FlagDescCity   = "Birth city from the city table (overrides --lon and --tz)"
	FlagDescGender = "male or female (steers the luck-cycle direction)"
	FlagDescQimen  = "Also cast the Qi Men Dun Jia hour chart"
	FlagDescEoT    = "Use true solar time (adds the equation of time)"
	FlagDescZiHour = "Roll the day pillar at 23:00 instead of midnight"
	FlagDescMethod = "Qi Men Ju rule: super-sticking or split-patch"
	FlagDescLang   = "Display language (zh or en)"
	FlagDescJSON   = "Print the chart bundle as JSON"
	FlagDescYear   = "Gregorian year"
	FlagDescOutput = "Write to this file instead of stdout"
	FlagDescFile   = "Local .vcf file"
	FlagDescURL    = "Remote vCard URL (http or https)"
	FlagDescUser   = "HTTP Basic Auth user for --url (password from " + EnvVCardPassword + ")"
	FlagDescPort   = "Port to listen on"
	FlagDescLuck   = "Also write one luck-pillar .ics per contact into this directory"
	FlagDescCityIm = "Birth city assumed for cards without GEO"

	MsgVersionOutput = "%s version %s (%s, %s, %s/%s)\n"
)

// EnvVCardPassword carries the Basic Auth password of the vCard URL.
const EnvVCardPassword = "FORTUNE_VCARD_PASSWORD"

// SupportedLanguages lists the display languages (BCP 47).
var SupportedLanguages = []string{"zh", "en"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyTitleBazi    = "title_bazi"
	TKeyTitleZiwei   = "title_ziwei"
	TKeyTitleQimen   = "title_qimen"
	TKeyTitleAlmanac = "title_almanac"
	TKeyTitleMoment  = "title_moment"
	TKeyTitleLuck    = "title_luck"

	TKeyColPillar  = "col_pillar"
	TKeyColYear    = "col_year"
	TKeyColMonth   = "col_month"
	TKeyColDay     = "col_day"
	TKeyColHour    = "col_hour"
	TKeyColNaYin   = "col_na_yin"
	TKeyColTenGod  = "col_ten_god"
	TKeyColHidden  = "col_hidden"
	TKeyColPalace  = "col_palace"
	TKeyColBranch  = "col_branch"
	TKeyColMajor   = "col_major"
	TKeyColMinor   = "col_minor"
	TKeyColNumber  = "col_number"
	TKeyColStems   = "col_stems"
	TKeyColStar    = "col_star"
	TKeyColDoor    = "col_door"
	TKeyColDeity   = "col_deity"
	TKeyColAge     = "col_age"
	TKeyColYears   = "col_years"
	TKeyColItem    = "col_item"
	TKeyColValue   = "col_value"
	TKeyLblCivil   = "lbl_civil"
	TKeyLblSolar   = "lbl_solar"
	TKeyLblShift   = "lbl_shift"
	TKeyLblLunar   = "lbl_lunar"
	TKeyLblDM      = "lbl_day_master"
	TKeyLblVoid    = "lbl_void"
	TKeyLblLuck    = "lbl_luck_start"
	TKeyLblBureau  = "lbl_bureau"
	TKeyLblBody    = "lbl_body"
	TKeyLblDun     = "lbl_dun"
	TKeyLblDuty    = "lbl_duty"
	TKeyLblOfficer = "lbl_officer"
	TKeyLblMansion = "lbl_mansion"
	TKeyLblJoy     = "lbl_joy"
	TKeyLblWealth  = "lbl_wealth"
	TKeyLblFortune = "lbl_fortune"
	TKeyLblPengZu  = "lbl_peng_zu"
	TKeyLblClash   = "lbl_clash"
	TKeyLblYi      = "lbl_yi"
	TKeyLblJi      = "lbl_ji"
	TKeyDirFwd     = "dir_forward"
	TKeyDirBwd     = "dir_backward"

	TKeyEvtTerm     = "event_term"      // Requires Term
	TKeyEvtLuck     = "event_luck"      // Requires Pillar, Age
	TKeyCalTerms    = "calendar_terms"  // Requires Year
	TKeyCalLuck     = "calendar_luck"   // Requires Name
	TKeyLuckStartAt = "luck_start_text" // Requires Years, Months, Days
)

// Name kinds prefix the key of an enumerated value, e.g. "term_start_of_spring".
const (
	NameTerm    = "term"
	NameStar    = "star"
	NamePalace  = "palace"
	NameHua     = "hua"
	NameElement = "element"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort      = "18080"
	DefaultLanguage  = "zh"
	DefaultTZ        = "+08:00"
	DefaultTime      = "12:00"
	DefaultGender    = "male"
	DefaultMethod    = "super-sticking"
	DefaultCity      = "北京"
	UIDSalt          = "ai-fortune-teller-v1-"
	MaxBatchParallel = 8
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion      = "2.0"
	ICalProdid       = "-//AI Fortune Teller//Almanac//EN"
	ICalMethod       = "PUBLISH"
	ICalScale        = "GREGORIAN"
	ICalDomain       = "ai-fortune-teller"
	ICalCategoryTerm = "SOLAR-TERM"
	ICalCategoryLuck = "LUCK-PILLAR"

	// iCal/vCard Fields
	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropCategories = "CATEGORIES"
	PropDescr      = "DESCRIPTION"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"
	VCardGEO  = "GEO"
	VCardTZ   = "TZ"

	DefaultICalRefresh = 24 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Layouts for the CLI and HTTP query
	LayoutDate        = "2006-01-02"
	LayoutTime        = "15:04"
	LayoutTimeSeconds = "15:04:05"
	LayoutDisplay     = "2006-01-02 15:04:05"

	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatLocalT    = "2006-01-02T15:04:05"
	DateFormatBasicT    = "20060102T150405"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%s@%s"
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
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB
	MaxCachedCharts     = 1024
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
	RouteAPI     = "/api/v1"
	RouteChart   = "/chart"
	RouteCities  = "/cities"
	RouteTerms   = "/terms/{year}"
	ParamYear    = "year"
)

// Query parameters of the chart route; the names match the CLI flags.
const (
	QueryDate   = FlagDate
	QueryTime   = FlagTime
	QueryTZ     = FlagTZ
	QueryLon    = FlagLon
	QueryCity   = FlagCity
	QueryGender = FlagGender
	QueryQimen  = FlagQimen
	QueryEoT    = FlagEoT
	QueryZiHour = FlagZiHour
	QueryMethod = FlagMethod
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType  = "Content-Type"
	HeaderCacheControl = "Cache-Control"
	HeaderETag         = "ETag"
	HeaderAllow        = "Allow"
	HeaderXContentType = "X-Content-Type-Options"
	HeaderUserAgent    = "User-Agent"
	HeaderIfNoneMatch  = "If-None-Match"
	HeaderRequestID    = "X-Request-Id"
	HeaderAccept       = "Accept"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeTextPlain       = "text/plain; charset=utf-8"
	MimeNoSniff         = "nosniff"
	MimeVCardAccept     = "text/vcard, text/x-vcard;q=0.9, text/directory;q=0.8, */*;q=0.1"
	MimeHTML            = "text/html"
	CacheControlPrivate = "private, no-cache"
	CacheControlPublic  = "public, max-age=86400"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricsNamespace    = "fortune"
	MetricRequests      = "http_requests_total"
	MetricRequestsHelp  = "HTTP requests by route and status code."
	MetricCharts        = "charts_computed_total"
	MetricChartsHelp    = "Charts computed by the engine, by outcome."
	MetricDuration      = "chart_duration_seconds"
	MetricDurationHelp  = "Time spent computing one chart bundle."
	MetricCacheHits     = "chart_cache_hits_total"
	MetricCacheHitsHelp = "Chart responses served from the ETag cache."
	LabelRoute          = "route"
	LabelCode           = "code"
	LabelOutcome        = "outcome"
	OutcomeOK           = "ok"
	OutcomeInvalid      = "invalid_input"
	OutcomeRange        = "unsupported_range"
	OutcomeComputation  = "computation"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrSourceMissing   = "configuration error: either a file or a URL is required"
	ErrFetcherMissing  = "internal error: network fetcher is not initialized"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrFetchStatus     = "server returned unexpected status"
	ErrFetchNetwork    = "network error during fetch"
	ErrFetchHTML       = "server answered with an HTML page, not vCard data"
	ErrVCardParse      = "failed to parse vCard stream"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrDateParse       = "unable to parse date"
	ErrTimeParse       = "unable to parse time"
	ErrTZParse         = "unable to parse UTC offset"
	ErrGeoParse        = "unable to parse GEO coordinates"
	ErrYearParse       = "unable to parse year"
	ErrBoolParse       = "unable to parse boolean"
	ErrLonParse        = "unable to parse longitude"
	ErrCityUnknown     = "unknown city"
	ErrCitiesLoad      = "failed to load city table"
	ErrCityInvalid     = "invalid city entry"
	ErrPlaceMissing    = "either a longitude or a city is required"
	ErrChart           = "chart computation failed"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrEncodeJSON      = "failed to encode JSON"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrLangUnsupported = "unsupported display language"
	ErrMetrics         = "failed to register metrics"
	ErrWriteFile       = "failed to write output file"
	ErrDefaults        = "invalid import defaults"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
	HTTPMsgOK           = "ok"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackName = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgChartComputed = "Chart computed"
	MsgChartFailed   = "Chart computation failed"
	MsgBatchStarted  = "Batch computation started"
	MsgBatchDone     = "Batch computation finished"
	MsgAppStop       = "Application stopped gracefully"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedDate   = "Skipping invalid date format"
	MsgSkippedGeo    = "Ignoring malformed GEO, using default place"
	MsgImportDone    = "vCard import finished"
	MsgExportDone    = "Calendar export successful"
	MsgAppStarting   = "Starting application"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheStored   = "Chart response cached"
	MsgCacheReset    = "Chart cache full, starting over"
	MsgRequestServed = "Request served"
	MsgCitiesLoaded  = "City table loaded"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgFetchStarted  = "Initiating vCard download"
	MsgFetchBadCode  = "Server returned error status"
	MsgFetching      = "vCards downloading"
	MsgContactFailed = "Contact chart failed"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMethod    = "method"
	LogKeyRoute     = "route"
	LogKeyRequestID = "request_id"
	LogKeyTotal     = "total"
	LogKeyFound     = "found"
	LogKeyFailed    = "failed"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyCivil     = "civil"
	LogKeySolar     = "solar"
	LogKeyPillars   = "pillars"
	LogKeyQimen     = "qimen"
	LogKeyDuration  = "duration_ms"
	LogKeyLength    = "content_length"
	LogKeyUID       = "uid"
	LogKeyMIME      = "content_type"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
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
	CompEngine  = "engine"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompVCard   = "vcard"
	CompExport  = "calexport"
	CompMain    = "main"
	CompCLI     = "cli"
	CompConfig  = "config"
	CompI18n    = "i18n"
)
