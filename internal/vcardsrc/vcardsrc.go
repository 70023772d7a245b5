// Package vcardsrc reads birth data from vCards: BDAY for the moment, GEO
// for the longitude, TZ for the civil offset and GENDER for the luck cycle.
package vcardsrc

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/emersion/go-vcard"

	"github.com/bigfamingjia/ai-fortune-teller/internal/config"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
)

// Source names where the cards come from: a local file or a URL.
type Source struct {
	LocalPath string
	WebURL    string
	WebUser   string
	WebPass   string
}

// Defaults fill what a card leaves out.
type Defaults struct {
	UTCOffset time.Duration
	Longitude float64
	Gender    domain.Gender
	Hour      int
	Minute    int
	Options   domain.Options
	WantQimen bool
}

// Contact is one card turned into a chart request.
type Contact struct {
	UID     string              `json:"uid"`
	Name    string              `json:"name"`
	Request domain.BirthRequest `json:"request"`
	// TimeKnown, PlaceKnown and GenderKnown report which fields came
	// from the card rather than from Defaults.
	TimeKnown   bool `json:"time_known"`
	PlaceKnown  bool `json:"place_known"`
	GenderKnown bool `json:"gender_known"`
}

// Importer reads contacts from a Source.
type Importer struct {
	Fetcher  Fetcher
	Defaults Defaults
}

// Import opens the source and decodes every usable card.
func (im *Importer) Import(ctx context.Context, src Source) ([]Contact, error) {
	r, err := im.open(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = r.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Decode(ctx, r, im.Defaults)
}

// open returns the raw vCard stream; a local path wins over a URL.
func (im *Importer) open(ctx context.Context, src Source) (io.ReadCloser, error) {
	switch {
	case src.LocalPath != "":
		return os.Open(src.LocalPath)
	case src.WebURL != "":
		if im.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return im.Fetcher.Fetch(ctx, src.WebURL, src.WebUser, src.WebPass)
	default:
		return nil, errors.New(config.ErrSourceMissing)
	}
}

// Decode reads cards until EOF. Malformed cards and cards without a
// usable birthday are skipped and logged.
func Decode(ctx context.Context, r io.Reader, def Defaults) ([]Contact, error) {
	dec := vcard.NewDecoder(r)
	stats := struct{ processed, found int }{}
	var contacts []Contact

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompVCard,
				config.LogKeyError, err)
			continue
		}
		stats.processed++

		c, ok := contactOf(card, def)
		if !ok {
			continue
		}
		stats.found++
		contacts = append(contacts, c)
	}

	slog.Info(config.MsgImportDone,
		config.LogKeyComponent, config.CompVCard,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.found),
		),
	)
	return contacts, nil
}

// contactOf turns one card into a contact, or reports false when the card
// has no birthday with a year.
func contactOf(card vcard.Card, def Defaults) (Contact, bool) {
	// 1. Birthday
	bday := card.Get(config.VCardBDAY)
	if bday == nil || bday.Value == "" {
		return Contact{}, false
	}
	b, err := parseBirthday(bday.Value)
	if err != nil {
		slog.Debug(config.MsgSkippedDate,
			config.LogKeyComponent, config.CompVCard,
			config.LogKeyValue, bday.Value)
		return Contact{}, false
	}

	// 2. Display Name (FN, then N)
	name := config.FallbackName
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		name = fn.Value
	} else if n := card.Get(config.VCardN); n != nil && n.Value != "" {
		name = n.Value
	}

	// 3. Request from Defaults, then Card Overrides
	req := domain.BirthRequest{
		Civil:     b.civil,
		UTCOffset: def.UTCOffset,
		Longitude: def.Longitude,
		Gender:    def.Gender,
		WantQimen: def.WantQimen,
		Options:   def.Options,
	}
	c := Contact{Name: name, TimeKnown: b.timeKnown}
	if !b.timeKnown {
		req.Civil.Hour, req.Civil.Minute = def.Hour, def.Minute
	}

	if geo := card.Get(config.VCardGEO); geo != nil && geo.Value != "" {
		if _, lon, err := parseGeo(geo.Value); err == nil {
			req.Longitude = lon
			c.PlaceKnown = true
		} else {
			slog.Debug(config.MsgSkippedGeo,
				config.LogKeyComponent, config.CompVCard,
				config.LogKeyValue, geo.Value)
		}
	}

	// An offset written into BDAY beats the TZ property.
	switch {
	case b.offset != nil:
		req.UTCOffset = *b.offset
	case card.Get(config.VCardTZ) != nil:
		if off, err := parseTZ(card.Get(config.VCardTZ).Value, req.Civil); err == nil {
			req.UTCOffset = off
		}
	}

	if sex, _ := card.Gender(); sex == vcard.SexMale || sex == vcard.SexFemale {
		req.Gender, _ = domain.ParseGender(string(sex))
		c.GenderKnown = true
	}

	// 4. Stable UID from Name and Birth Moment
	c.Request = req
	input := fmt.Sprintf(config.FormatHashInput, name, req.Civil.String(), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	c.UID = fmt.Sprintf("%x", hash[:config.UIDHashLength])
	return c, true
}

// birthday is a parsed BDAY value.
type birthday struct {
	civil     domain.CivilDateTime
	timeKnown bool
	// offset is set when the value carried its own UTC offset.
	offset *time.Duration
}

// parseBirthday handles the BDAY forms that carry a year. Values such as
// --01-02 have no year and cannot be charted.
func parseBirthday(value string) (birthday, error) {
	for _, f := range []string{config.DateFormatFullDash, config.DateFormatFullBasic} {
		if t, err := time.Parse(f, value); err == nil {
			return birthday{civil: civilOf(t)}, nil
		}
	}
	for _, f := range []string{config.DateFormatLocalT, config.DateFormatBasicT} {
		if t, err := time.Parse(f, value); err == nil {
			return birthday{civil: civilOf(t), timeKnown: true}, nil
		}
	}
	for _, f := range []string{config.DateFormatFullT, config.DateFormatRFC3339} {
		if t, err := time.Parse(f, value); err == nil {
			_, sec := t.Zone()
			off := time.Duration(sec) * time.Second
			return birthday{civil: civilOf(t), timeKnown: true, offset: &off}, nil
		}
	}
	return birthday{}, errors.New(config.ErrDateParse)
}

// civilOf keeps the wall clock of t and drops its zone.
func civilOf(t time.Time) domain.CivilDateTime {
	return domain.CivilDateTime{
		Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
		Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(),
	}
}

// parseGeo accepts the vCard 4 URI form "geo:lat,lon" and the vCard 3
// form "lat;lon".
func parseGeo(value string) (lat, lon float64, err error) {
	v := strings.TrimSpace(value)
	sep := ";"
	if rest, ok := strings.CutPrefix(strings.ToLower(v), "geo:"); ok {
		v, _, _ = strings.Cut(rest, ";")
		sep = ","
	}
	parts := strings.Split(v, sep)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%s: %q", config.ErrGeoParse, value)
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("%s: %q", config.ErrGeoParse, value)
	}
	return lat, lon, nil
}

// parseTZ reads a numeric offset or an IANA zone name; zone names are
// resolved at the birth date so that historical offsets and DST apply.
func parseTZ(value string, at domain.CivilDateTime) (time.Duration, error) {
	if off, err := config.ParseUTCOffset(value); err == nil {
		return off, nil
	}
	loc, err := time.LoadLocation(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", config.ErrTZParse, err)
	}
	t := time.Date(at.Year, time.Month(at.Month), at.Day, at.Hour, at.Minute, at.Second, 0, loc)
	_, sec := t.Zone()
	return time.Duration(sec) * time.Second, nil
}
