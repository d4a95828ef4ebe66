package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"finetract"
)

var (
	dbFile    = flag.String("db", path.Join(os.Getenv("HOME"), ".finetract", "finetract.db"), "Path of the bolt database file.")
	confFile  = flag.String("conf", path.Join(os.Getenv("HOME"), ".finetract", "config.yaml"), "Path of the yaml config file.")
	events    = flag.String("events", "", "File of events to replay, one per line: channel<TAB>title<TAB>body[<TAB>epoch-millis].")
	setLimit  = flag.Float64("limit", 0, "Set the daily limit before replaying (0 = leave unchanged).")
	verbose   = flag.Bool("v", false, "Verbose pipeline logging.")
	showCard  = flag.Bool("report", false, "Print last month's report card if available.")
	showGhost = flag.Bool("ghosts", true, "Scan for recurring subscriptions after replay.")
)

func checkf(err error, format string, args ...any) {
	if err != nil {
		log.Printf(format, args...)
		log.Println()
		log.Fatalf("%+v", errors.WithStack(err))
	}
}

func tierColor(tier finetract.Tier) *color.Color {
	switch tier {
	case finetract.TierAlert:
		return color.New(color.BgRed, color.FgWhite)
	case finetract.TierCaution:
		return color.New(color.BgYellow, color.FgBlack)
	case finetract.TierInfo:
		return color.New(color.BgBlue, color.FgWhite)
	default:
		return color.New(color.BgGreen, color.FgBlack)
	}
}

func replay(t *finetract.Tracker, r io.Reader) {
	s := bufio.NewScanner(r)
	var line int
	for s.Scan() {
		line++
		text := strings.TrimSpace(s.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cols := strings.Split(text, "\t")
		if len(cols) < 3 {
			log.Printf("Skipping line %d: need channel, title, body", line)
			continue
		}
		at := time.Now()
		if len(cols) >= 4 {
			ms, err := strconv.ParseInt(strings.TrimSpace(cols[3]), 10, 64)
			checkf(err, "Unable to parse epoch-millis on line %d: %v", line, cols[3])
			at = time.UnixMilli(ms)
		}

		err := t.Ingest(cols[0], cols[1], cols[2], at)
		switch {
		case err == nil:
			color.New(color.BgGreen, color.FgBlack).Printf(" A ")
		case finetract.IsReject(err):
			color.New(color.BgRed, color.FgWhite).Printf(" R ")
		default:
			checkf(err, "Pipeline failure on line %d", line)
		}
		desc := cols[1] + " " + cols[2]
		if len(desc) > 60 {
			desc = desc[:60]
		}
		color.New(color.BgWhite, color.FgBlack).Printf(" %-60s", desc)
		if err != nil {
			fmt.Printf("  %v", err)
		}
		fmt.Println()
	}
	checkf(s.Err(), "Unable to read events")
}

func main() {
	flag.Parse()

	checkf(os.MkdirAll(path.Dir(*dbFile), 0o755), "Unable to create directory: %v", path.Dir(*dbFile))

	cfg, err := finetract.LoadConfig(*confFile)
	checkf(err, "Unable to load config: %v", *confFile)

	logger := zerolog.Nop()
	if *verbose {
		logger = finetract.NewLogger(os.Stderr)
	}

	store, err := finetract.OpenBoltStore(*dbFile, logger)
	checkf(err, "Unable to open store: %v", *dbFile)
	defer store.Close()

	t, err := finetract.New(store, cfg, finetract.WithLogger(logger))
	checkf(err, "Unable to build tracker")

	if *setLimit > 0 {
		checkf(t.SetDailyLimit(*setLimit), "Unable to set daily limit")
	}

	if len(*events) > 0 {
		f, err := os.Open(*events)
		checkf(err, "Unable to open events file: %v", *events)
		replay(t, f)
		checkf(f.Close(), "Unable to close events file")
		fmt.Println()
	}

	spend, err := t.TodaySpend()
	checkf(err, "Unable to read today's spend")
	limit, err := t.DailyLimit()
	checkf(err, "Unable to read daily limit")
	exceeded, err := t.LimitExceeded()
	checkf(err, "Unable to read limit state")

	color.New(color.BgYellow, color.FgBlack).Printf(" TODAY ")
	fmt.Printf(" %.2f of %.2f", spend, limit)
	if exceeded {
		color.New(color.FgRed).Printf("  LIMIT EXCEEDED")
	}
	fmt.Println()

	msg, err := t.Message()
	checkf(err, "Unable to evaluate insights")
	tierColor(msg.Tier).Printf(" %s ", strings.ToUpper(msg.Tier.String()))
	fmt.Printf(" %s\n", msg.Text)

	if *showGhost {
		ghosts, err := t.Ghosts()
		checkf(err, "Unable to scan for subscriptions")
		for _, g := range ghosts {
			color.New(color.BgMagenta, color.FgWhite).Printf(" GHOST ")
			fmt.Printf(" %s %.2f every ~%d days (last %s)\n",
				g.Merchant, g.Amount, g.CycleDays, g.LastObserved.Format("2006-01-02"))
		}
	}

	if *showCard {
		card, ok, err := t.ReportCard()
		checkf(err, "Unable to generate report card")
		if !ok {
			fmt.Println("No data for last month.")
			return
		}
		color.New(color.BgCyan, color.FgBlack).Printf(" GRADE %s ", card.Grade)
		fmt.Printf(" %d of %d days disciplined\n", card.DisciplinedDays, card.TotalDays)
		for _, sub := range []finetract.Category{
			finetract.CategoryFood, finetract.CategoryTravel, finetract.CategoryEntertainment,
			finetract.CategoryShopping, finetract.CategoryEducation, finetract.CategoryOther,
		} {
			status := card.Subjects[sub]
			if status == finetract.StatusNoData {
				continue
			}
			fmt.Printf("  %-15s %s\n", sub, status)
		}
		fmt.Printf("Remark: %s\nTip:    %s\n", card.Remark, card.Tip)
		checkf(t.MarkReportShown(), "Unable to mark report shown")
	}
}
