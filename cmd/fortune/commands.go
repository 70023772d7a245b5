package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bigfamingjia/ai-fortune-teller/internal/calexport"
	"github.com/bigfamingjia/ai-fortune-teller/internal/config"
	"github.com/bigfamingjia/ai-fortune-teller/internal/domain"
	"github.com/bigfamingjia/ai-fortune-teller/internal/engine"
	"github.com/bigfamingjia/ai-fortune-teller/internal/locale"
	"github.com/bigfamingjia/ai-fortune-teller/internal/render"
	"github.com/bigfamingjia/ai-fortune-teller/internal/server"
	"github.com/bigfamingjia/ai-fortune-teller/internal/vcardsrc"
)

// cli carries the persistent flags and the resources opened for one run.
type cli struct {
	stderr     io.Writer
	debug      bool
	citiesPath string
	logCloser  io.Closer

	// fetcher is swapped out by tests.
	fetcher vcardsrc.Fetcher
}

func (c *cli) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          config.BinaryName,
		Short:        config.CmdDescRoot,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			c.logCloser = setupLogging(c.debug, c.stderr)
			logStartupInfo()
		},
	}
	pf := root.PersistentFlags()
	pf.BoolVar(&c.debug, config.FlagDebug, false, config.FlagDescDebug)
	pf.StringVar(&c.citiesPath, config.FlagCities, "", config.FlagDescCities)

	root.AddCommand(
		c.chartCmd(),
		c.termsCmd(),
		c.importCmd(),
		c.serveCmd(),
		&cobra.Command{
			Use:   config.CmdVersion,
			Short: config.CmdDescVersion,
			Args:  cobra.NoArgs,
			Run:   func(cmd *cobra.Command, _ []string) { printVersion(cmd.OutOrStdout()) },
		},
	)
	return root
}

func (c *cli) cities() (*config.CityTable, error) {
	return config.LoadCities(c.citiesPath)
}

// -----------------------------------------------------------------------------
// chart
// -----------------------------------------------------------------------------

func (c *cli) chartCmd() *cobra.Command {
	var (
		in     engine.Input
		lang   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   config.CmdChart,
		Short: config.CmdDescChart,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// 1. Flags to Request
			cities, err := c.cities()
			if err != nil {
				return err
			}
			req, err := in.Request(cities)
			if err != nil {
				return err
			}
			// 2. Compute
			b, err := engine.ComputeChart(req)
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrChart, err)
			}
			slog.Debug(config.MsgChartComputed,
				config.LogKeyComponent, config.CompCLI,
				config.LogKeyCivil, req.Civil.String(),
				config.LogKeySolar, b.Moment.Solar,
			)

			// 3. Output (JSON or Localized Tables)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, b)
			}
			t, err := locale.New(lang)
			if err != nil {
				return err
			}
			_, err = io.WriteString(out, render.New(out, t).Bundle(b))
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Date, config.FlagDate, "", config.FlagDescDate)
	f.StringVar(&in.Time, config.FlagTime, "", config.FlagDescTime)
	f.StringVar(&in.Gender, config.FlagGender, config.DefaultGender, config.FlagDescGender)
	f.BoolVar(&in.Qimen, config.FlagQimen, false, config.FlagDescQimen)
	placeFlags(f, &in, config.FlagDescCity)
	optionFlags(f, &in)
	f.StringVar(&lang, config.FlagLang, config.DefaultLanguage, config.FlagDescLang)
	f.BoolVar(&asJSON, config.FlagJSON, false, config.FlagDescJSON)
	_ = cmd.MarkFlagRequired(config.FlagDate)
	cmd.MarkFlagsMutuallyExclusive(config.FlagLon, config.FlagCity)
	return cmd
}

// placeFlags registers the zone and place flags shared by chart and import.
func placeFlags(f *pflag.FlagSet, in *engine.Input, cityDesc string) {
	f.StringVar(&in.TZ, config.FlagTZ, "", config.FlagDescTZ)
	f.StringVar(&in.Lon, config.FlagLon, "", config.FlagDescLon)
	f.StringVar(&in.City, config.FlagCity, "", cityDesc)
}

// optionFlags registers the calculation options shared by chart and import.
func optionFlags(f *pflag.FlagSet, in *engine.Input) {
	f.BoolVar(&in.EoT, config.FlagEoT, false, config.FlagDescEoT)
	f.BoolVar(&in.ZiHour, config.FlagZiHour, false, config.FlagDescZiHour)
	f.StringVar(&in.Method, config.FlagMethod, config.DefaultMethod, config.FlagDescMethod)
}

// -----------------------------------------------------------------------------
// terms
// -----------------------------------------------------------------------------

func (c *cli) termsCmd() *cobra.Command {
	var (
		year   int
		output string
		lang   string
	)
	cmd := &cobra.Command{
		Use:   config.CmdTerms,
		Short: config.CmdDescTerms,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := locale.New(lang)
			if err != nil {
				return err
			}
			e := &calexport.Exporter{Clock: calexport.RealClock{}, T: t}
			data, err := e.Terms(year)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}

	f := cmd.Flags()
	f.IntVar(&year, config.FlagYear, time.Now().Year(), config.FlagDescYear)
	f.StringVarP(&output, config.FlagOutput, "o", "", config.FlagDescOutput)
	f.StringVar(&lang, config.FlagLang, config.DefaultLanguage, config.FlagDescLang)
	return cmd
}

// -----------------------------------------------------------------------------
// import
// -----------------------------------------------------------------------------

// contactChart is one line of the JSON import report.
type contactChart struct {
	Contact vcardsrc.Contact    `json:"contact"`
	Bundle  *engine.ChartBundle `json:"bundle,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func (c *cli) importCmd() *cobra.Command {
	var (
		src     vcardsrc.Source
		in      engine.Input
		lang    string
		luckDir string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   config.CmdImport,
		Short: config.CmdDescImport,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// 1. Resolve Defaults for Cards Without Place or Time
			cities, err := c.cities()
			if err != nil {
				return err
			}
			t, err := locale.New(lang)
			if err != nil {
				return err
			}
			def, err := importDefaults(in, cities)
			if err != nil {
				return err
			}

			// 2. Read the Address Book (File or URL)
			fetcher := c.fetcher
			if fetcher == nil {
				fetcher = vcardsrc.NewHTTPFetcher()
			}
			src.WebPass = os.Getenv(config.EnvVCardPassword)
			im := &vcardsrc.Importer{Fetcher: fetcher, Defaults: def}
			contacts, err := im.Import(ctx, src)
			if err != nil {
				return err
			}

			// 3. Compute Every Chart; a Bad Card Fails Alone
			reqs := make([]domain.BirthRequest, len(contacts))
			for i, ct := range contacts {
				reqs[i] = ct.Request
			}
			results, err := engine.ComputeBatch(ctx, reqs)
			if err != nil {
				return err
			}

			report := make([]contactChart, len(contacts))
			failed := 0
			for i, r := range results {
				report[i].Contact = contacts[i]
				if r.Err != nil {
					failed++
					report[i].Error = r.Err.Error()
					slog.Warn(config.MsgContactFailed,
						config.LogKeyComponent, config.CompCLI,
						config.LogKeyName, contacts[i].Name,
						config.LogKeyError, r.Err,
					)
					continue
				}
				report[i].Bundle = &results[i].Bundle
			}
			slog.Info(config.MsgImportDone,
				config.LogKeyComponent, config.CompCLI,
				config.LogKeyTotal, len(contacts),
				config.LogKeyFailed, failed,
			)

			// 4. Optional Luck Calendars, One File per Contact
			if luckDir != "" {
				e := &calexport.Exporter{Clock: calexport.RealClock{}, T: t}
				if err := writeLuck(e, luckDir, report); err != nil {
					return err
				}
			}

			// 5. Report
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, report)
			}
			return writeReport(out, render.New(out, t), report)
		},
	}

	f := cmd.Flags()
	f.StringVar(&src.LocalPath, config.FlagFile, "", config.FlagDescFile)
	f.StringVar(&src.WebURL, config.FlagURL, "", config.FlagDescURL)
	f.StringVar(&src.WebUser, config.FlagUser, "", config.FlagDescUser)
	f.StringVar(&in.Gender, config.FlagGender, config.DefaultGender, config.FlagDescGender)
	f.BoolVar(&in.Qimen, config.FlagQimen, false, config.FlagDescQimen)
	placeFlags(f, &in, config.FlagDescCityIm)
	optionFlags(f, &in)
	f.StringVar(&lang, config.FlagLang, config.DefaultLanguage, config.FlagDescLang)
	f.StringVar(&luckDir, config.FlagLuck, "", config.FlagDescLuck)
	f.BoolVar(&asJSON, config.FlagJSON, false, config.FlagDescJSON)
	cmd.MarkFlagsOneRequired(config.FlagFile, config.FlagURL)
	cmd.MarkFlagsMutuallyExclusive(config.FlagFile, config.FlagURL)
	cmd.MarkFlagsMutuallyExclusive(config.FlagLon, config.FlagCity)
	return cmd
}

// importDefaults resolves the place, gender and options assumed for cards
// that do not carry them.
func importDefaults(in engine.Input, cities *config.CityTable) (vcardsrc.Defaults, error) {
	if strings.TrimSpace(in.City) == "" && strings.TrimSpace(in.Lon) == "" {
		in.City = config.DefaultCity
	}
	lon, off, err := in.Place(cities)
	if err != nil {
		return vcardsrc.Defaults{}, fmt.Errorf("%s: %w", config.ErrDefaults, err)
	}
	g := in.Gender
	if g == "" {
		g = config.DefaultGender
	}
	gender, err := domain.ParseGender(g)
	if err != nil {
		return vcardsrc.Defaults{}, fmt.Errorf("%s: %w", config.ErrDefaults, err)
	}
	clock, err := time.Parse(config.LayoutTime, config.DefaultTime)
	if err != nil {
		return vcardsrc.Defaults{}, err
	}
	return vcardsrc.Defaults{
		UTCOffset: off,
		Longitude: lon,
		Gender:    gender,
		Hour:      clock.Hour(),
		Minute:    clock.Minute(),
		Options:   in.Options(),
		WantQimen: in.Qimen,
	}, nil
}

// writeLuck writes one luck-cycle calendar per charted contact, named by UID.
// Contacts whose chart failed are skipped.
func writeLuck(e *calexport.Exporter, dir string, report []contactChart) error {
	if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	for _, r := range report {
		if r.Bundle == nil {
			continue
		}
		data, err := e.Luck(r.Contact.UID, r.Contact.Name, r.Bundle.Bazi)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, r.Contact.UID+config.ExtICS)
		if err := os.WriteFile(path, data, config.FilePermUserRW); err != nil {
			return fmt.Errorf("%s: %w", config.ErrWriteFile, err)
		}
		slog.Debug(config.MsgExportDone,
			config.LogKeyComponent, config.CompExport,
			config.LogKeyUID, r.Contact.UID,
			config.LogKeyFile, path,
		)
	}
	return nil
}

// writeReport prints each contact's heading followed by its chart, or by
// the error that stopped it.
func writeReport(w io.Writer, r *render.Renderer, report []contactChart) error {
	for _, item := range report {
		head := fmt.Sprintf("# %s  %s\n", item.Contact.Name, item.Contact.Request.Civil)
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		body := "! " + item.Error + "\n"
		if item.Bundle != nil {
			body = r.Bundle(*item.Bundle)
		}
		if _, err := io.WriteString(w, body+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// serve
// -----------------------------------------------------------------------------

func (c *cli) serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   config.CmdServe,
		Short: config.CmdDescServe,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cities, err := c.cities()
			if err != nil {
				return err
			}
			srv, err := server.NewChartServer(port, cities)
			if err != nil {
				return err
			}
			return srv.Start(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&port, config.FlagPort, "p", config.DefaultPort, config.FlagDescPort)
	return cmd
}

// -----------------------------------------------------------------------------
// Output helpers
// -----------------------------------------------------------------------------

// writeJSON pretty-prints v with two-space indentation.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%s: %w", config.ErrEncodeJSON, err)
	}
	return nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, config.FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteFile, err)
	}
	slog.Info(config.MsgExportDone,
		config.LogKeyComponent, config.CompExport,
		config.LogKeyFile, path,
		config.LogKeySizeBytes, len(data),
	)
	return nil
}
