package commands

import (
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/awb-kalender/internal/config"
	"github.com/klabast/wb-services/awb-kalender/internal/entity"
	"github.com/klabast/wb-services/awb-kalender/internal/logger"
	"github.com/klabast/wb-services/awb-kalender/internal/schedule"
)

func (c *cli) nextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next [category...]",
		Short: "Fetch the schedule once and show the next pickup per category",
		Long: `Fetch the schedule and print the next pickup date for each category.
Categories can be given as tag (black, brown, yellow, blue) or German name
(Restmüll, Biomüll, Kunststoffmüll, Papiermüll). Without arguments all
categories are shown.`,
		Example: `  awb-kalender next
  awb-kalender next restmüll papier --city "Bad Kreuznach" --street Salinenstraße`,
		RunE: c.runNext,
	}
}

func (c *cli) runNext(cmd *cobra.Command, args []string) error {
	categories := schedule.Categories
	if len(args) > 0 {
		categories = nil
		for _, arg := range args {
			category, err := schedule.ParseCategory(arg)
			if err != nil {
				return err
			}
			categories = append(categories, category)
		}
	}

	cfg, err := config.Load(c.v)
	if err != nil {
		return err
	}

	l := logger.NewStandardLogger(log.New(cmd.ErrOrStderr(), "", log.LstdFlags))
	defer l.Close()

	registry := newRegistry(cfg, l)
	if err := registry.Cache().Update(cmd.Context()); err != nil {
		return fmt.Errorf("failed to fetch schedule: %w", err)
	}
	registry.RefreshAll()

	var sensors []*entity.Sensor
	for _, category := range categories {
		sensor, err := registry.Sensor(category)
		if err != nil {
			return err
		}
		sensors = append(sensors, sensor)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Abfuhrtermine %s, %s\n", cfg.City, cfg.Street)
	fmt.Fprintln(cmd.OutOrStdout(), "─────────────────────────────────────────────────")
	writeNext(cmd.OutOrStdout(), sensors, registry.Cache().Now())
	return nil
}

// writeNext prints one line per sensor: name, next date, distance and the
// imminence marker.
func writeNext(w io.Writer, sensors []*entity.Sensor, now time.Time) {
	for _, s := range sensors {
		next, ok := s.NextDate()
		if !ok {
			fmt.Fprintf(w, "%-16s kein Termin\n", s.Name())
			continue
		}
		line := fmt.Sprintf("%-16s %s  %s", s.Name(), next.Format("02.01.2006"), relativeDay(next, now))
		if s.State() == entity.StateOn {
			line += "  ⚠️  rausstellen"
		}
		fmt.Fprintln(w, line)
	}
}

// relativeDay describes date relative to the day of now.
func relativeDay(date, now time.Time) string {
	today := schedule.StartOfDay(now)
	days := int(math.Round(schedule.StartOfDay(date).Sub(today).Hours() / 24))
	switch days {
	case 0:
		return "(heute)"
	case 1:
		return "(morgen)"
	default:
		return fmt.Sprintf("(in %d Tagen)", days)
	}
}
