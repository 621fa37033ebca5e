package main

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aosdict/knob2/internal/config"
	"github.com/aosdict/knob2/internal/extensions"
	"github.com/aosdict/knob2/internal/irc"
	"github.com/aosdict/knob2/internal/storage"
)

// buildExtensions returns the enabled extensions in pipeline order.
func buildExtensions(cfg *config.Config, session extensions.Session, store *storage.Store, log zerolog.Logger) []irc.Extension {
	x := cfg.Extensions
	logFor := func(name string) zerolog.Logger {
		return log.With().Str("extension", name).Logger()
	}

	var sundry *extensions.Sundry
	if x.Sundry.Enabled {
		sundry = extensions.NewSundry(session, logFor("sundry"), extensions.SundryOptions{
			ShowServerInfo:  x.Sundry.ShowServerInfo,
			ShowServerStats: x.Sundry.ShowServerStats,
			ShowMOTD:        x.Sundry.ShowMOTD,
		})
	}

	var exts []irc.Extension
	if x.Admin.Password != "" {
		var links extensions.LinksRequester
		if sundry != nil {
			links = sundry
		}
		exts = append(exts, extensions.NewAdmin(session, logFor("admin"), x.Admin.Password, links))
	}
	if x.CTCPVersion {
		exts = append(exts, extensions.NewCTCPVersion(session))
	}
	if sundry != nil {
		exts = append(exts, sundry)
	}
	if x.Hype {
		exts = append(exts, extensions.NewHype(session))
	}
	if x.Karma.Enabled {
		exts = append(exts, extensions.NewKarma(session, store, logFor("karma"), extensions.KarmaOptions{
			AllowMinus:  *x.Karma.AllowMinus,
			PreventSpam: *x.Karma.PreventSpam,
			Timeout:     time.Duration(x.Karma.Timeout) * time.Second,
			FlushPeriod: time.Duration(x.Karma.FlushPeriod) * time.Second,
		}))
	}
	if x.Quotes.Retrieve {
		exts = append(exts, extensions.NewQuoteRetriever(session, store))
	}
	if x.Echo {
		exts = append(exts, extensions.NewEcho(session))
	}
	if x.Quotes.Record {
		exts = append(exts, extensions.NewQuoteRecorder(store, logFor("quotes"), *x.Quotes.RecordIsAre))
	}

	for _, ext := range exts {
		log.Info().Str("extension", ext.Name()).Msg("extension enabled")
	}
	return exts
}
