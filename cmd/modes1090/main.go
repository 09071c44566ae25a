// modes1090 is a Mode S/ADS-B receiver: it reads raw IQ samples (from a
// capture file or stdin), decodes Mode S/A/C frames, tracks aircraft
// state, and publishes results to JSON snapshots and BaseStation
// network clients.
//
// Its CLI surface and live status view are adapted from this receiver's earlier main.go (gocui status table, aurora color formatting,
// os/signal-style shutdown expressed through context cancellation).
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/awesome-gocui/gocui"
	. "github.com/logrusorgru/aurora"
	flag "github.com/spf13/pflag"

	"modes1090/config"
	"modes1090/crc"
	"modes1090/demod"
	"modes1090/message"
	"modes1090/modeac"
	"modes1090/netout"
	"modes1090/ringbuf"
)

// minCandidateSeparation is the sample span message.ResolveOverlaps uses
// to decide whether two candidates starting close together are likely
// different phase slices of the same physical frame (a short, 56-bit
// frame's width) rather than distinct messages.
const minCandidateSeparation = demod.PreambleLen + crc.ShortMsgBits*2

// version identifies this build in receiver.json for JSON API clients
// that branch on feature availability.
const version = "modes1090/1.0"

func main() {
	opts, ifilePath, sbsOut, headless := parseFlags()

	appCtx := config.NewContext(opts, 32, 1<<20)
	if err := appCtx.WriteReceiverInfo(version); err != nil {
		log.Fatalf("writing receiver.json: %v", err)
	}

	if sbsOut != "" {
		f, err := os.Create(sbsOut)
		if err != nil {
			log.Fatalf("opening sbs output: %v", err)
		}
		q := netout.NewQueue(netout.NewSBSWriter(f), 1024)
		q.SetStats(appCtx.Stats)
		appCtx.AddWriter(q)
	}

	src, err := openSampleSource(ifilePath)
	if err != nil {
		log.Fatalf("opening sample source: %v", err)
	}
	defer src.Close()

	rootCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conv := ringbuf.Converter(ringbuf.NewUC8Converter())
	clock := ringbuf.NewWallClock(time.Now(), 2_400_000)
	reader := ringbuf.NewReader(src, conv, appCtx.Ring, clock, 1<<15)

	go func() {
		if err := reader.Run(); err != nil {
			log.Printf("sample reader stopped: %v", err)
		}
		appCtx.Ring.Close()
	}()
	go runDecodeLoop(rootCtx, appCtx)
	go runJSONLoop(rootCtx, appCtx)

	if headless {
		<-rootCtx.Done()
		fmt.Println("exiting")
		appCtx.Close()
		return
	}
	runUI(rootCtx, appCtx)
	appCtx.Close()
}

func openSampleSource(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// parseFlags defines the option surface: device selection, CRC-repair
// policy, receiver location/range gating, and output destinations.
func parseFlags() (config.Options, string, string, bool) {
	var opts config.Options
	var nfix int
	var ifilePath, sbsOut string
	var headless bool

	flag.StringVar(&opts.DeviceType, "device-type", "ifile", "sample source type (ifile)")
	flag.Float64Var(&opts.Gain, "gain", 0, "tuner gain in dB (0 = auto)")
	flag.Float64Var(&opts.FreqHz, "freq", 1090e6, "tuner frequency in Hz")
	flag.IntVar(&nfix, "fix", 1, "CRC bit-error repair level (0, 1, or 2)")
	flag.BoolVar(&opts.Aggressive, "aggressive", false, "enable two-bit CRC repair on DF17")
	flag.BoolVar(&opts.NoCRCCheck, "no-crc-check", false, "accept messages that fail CRC validation")
	flag.BoolVar(&opts.ModeAC, "mode-ac", false, "also decode Mode A/C replies")
	flag.Float64Var(&opts.ReceiverLat, "lat", 0, "receiver latitude, for range gating and surface CPR")
	flag.Float64Var(&opts.ReceiverLon, "lon", 0, "receiver longitude")
	flag.Float64Var(&opts.MaxRangeKm, "max-range", 0, "reject decoded positions beyond this range (km); 0 disables")
	flag.StringVar(&opts.JSONDir, "json-dir", "", "directory to write aircraft.json/history_NN.json/receiver.json")
	flag.IntVar(&opts.JSONIntervalSeconds, "json-time", 1, "seconds between aircraft.json updates")
	flag.IntVar(&opts.HistorySlots, "history-slots", 120, "number of rolling history_NN.json slots")
	flag.BoolVar(&opts.NetOnly, "net-only", false, "disable the live status view")
	var showOnly string
	flag.StringVar(&showOnly, "show-only", "", "only forward this ICAO address (hex)")
	flag.BoolVar(&opts.ForwardMLAT, "forward-mlat", false, "forward MLAT-sourced positions to network clients")
	flag.BoolVar(&opts.NetVerbatim, "net-verbatim", false, "forward messages without CRC repair applied")
	flag.StringVar(&ifilePath, "ifile", "-", "read raw IQ samples from this file (\"-\" for stdin)")
	flag.StringVar(&sbsOut, "sbs-output", "", "write BaseStation/SBS-1 CSV to this file")
	flag.BoolVar(&headless, "headless", false, "run without the live status view")
	flag.Parse()

	switch nfix {
	case 0:
		opts.NFixCRC = message.NFixNone
	case 1:
		opts.NFixCRC = message.NFixOne
	case 2:
		opts.NFixCRC = message.NFixTwo
	}
	if opts.Aggressive {
		opts.NFixCRC = message.NFixTwo
	}
	if opts.ReceiverLat != 0 || opts.ReceiverLon != 0 {
		opts.ReceiverSet = true
	}
	if showOnly != "" {
		var addr uint32
		fmt.Sscanf(showOnly, "%x", &addr)
		opts.ShowOnly = addr
	}

	return opts, ifilePath, sbsOut, headless || opts.NetOnly
}

// runDecodeLoop pulls ready buffers off the ring, demodulates,
// optionally decodes Mode A/C, and feeds every successful decode into
// the aircraft table and output writers.
func runDecodeLoop(ctx context.Context, appCtx *config.Context) {
	demodulator := &demod.Demodulator{ParseConfig: appCtx.ParseConfig, Stats: appCtx.Stats}
	acDetector := modeac.Detector{}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		buf, ok := appCtx.Ring.Next()
		if !ok {
			return
		}

		candidates := demodulator.Scan(buf)
		for _, best := range message.ResolveOverlaps(candidates, minCandidateSeparation, appCtx.ParseConfig.Filter) {
			handleMessage(appCtx, best.Message)
		}

		if appCtx.Opts.ModeAC {
			for _, msg := range acDetector.Scan(buf.Samples) {
				appCtx.Stats.ModeACMessagesTotal.Add(1)
				handleMessage(appCtx, msg)
			}
		}

		appCtx.Ring.Release()
	}
}

func handleMessage(appCtx *config.Context, msg *message.Message) {
	if msg == nil {
		return
	}
	appCtx.Stats.MessagesTotal.Add(1)
	if !appCtx.ShouldForward(msg) {
		return
	}

	ac := appCtx.Sky.Update(msg)
	if ac == nil {
		appCtx.Stats.AddressGateRejects.Add(1)
		return
	}
	snap := ac.Snapshot()
	appCtx.Publish(msg, &snap)
}

func runJSONLoop(ctx context.Context, appCtx *config.Context) {
	if appCtx.Opts.JSONDir == "" {
		return
	}
	interval := time.Duration(appCtx.Opts.JSONIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			appCtx.Sky.RemoveStale(now)
			if err := appCtx.WriteSnapshots(now); err != nil {
				log.Printf("writing snapshots: %v", err)
			}
		}
	}
}

// runUI drives the gocui status table, the same layout/update shape as
// this receiver's earlier main.go but reading from the tracker instead of a bare
// map.
func runUI(ctx context.Context, appCtx *config.Context) {
	g, err := gocui.NewGui(gocui.OutputNormal, false)
	if err != nil {
		log.Fatalln(err)
	}
	defer g.Close()

	g.SetManagerFunc(layout)
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		log.Fatalln(err)
	}

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				g.Update(func(*gocui.Gui) error { return gocui.ErrQuit })
				return
			case <-ticker.C:
				g.Update(func(g *gocui.Gui) error { return updateStatus(g, appCtx) })
			}
		}
	}()

	if err := g.MainLoop(); err != nil && !gocui.IsQuit(err) {
		log.Fatalln(err)
	}
}

func updateStatus(g *gocui.Gui, appCtx *config.Context) error {
	s, err := g.View("status")
	if err != nil {
		return nil
	}
	s.Clear()
	snap := appCtx.Stats.Snapshot()
	fmt.Fprintf(s, " A/C: %02d  MSGS: %d  CRC-FAIL: %d  LAST UPDATE: %s\n",
		Green(appCtx.Sky.Count()),
		snap.MessagesTotal,
		snap.DecodeFailures,
		Bold(Green(time.Now().Format("2006-01-02 15:04:05"))))

	l, err := g.View("list")
	if err != nil {
		return nil
	}
	l.Clear()
	fmt.Fprintln(l, " ICAO ADDR  FLIGHT     ALT    SPD    HDG     LAT     LON  SEEN")
	fmt.Fprintln(l, " ===================================================================")

	snaps := appCtx.Sky.Snapshots()
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Addr < snaps[j].Addr })
	for _, ac := range snaps {
		fmt.Fprintln(l, Sprintf(Yellow(" %06X  %9s  %-5d  %-5.0f  %-3.0f  %6.2f  %6.2f  %s"),
			ac.Addr, ac.Callsign, ac.Altitude, ac.Speed, ac.Heading, ac.Lat, ac.Lon,
			ac.LastSeen.Format("15:04:05")))
	}
	return nil
}

func layout(g *gocui.Gui) error {
	const maxX = 90
	_, maxY := g.Size()

	v, _ := g.SetView("status", 0, 0, maxX-2, 2, 0)
	v.Title = " STATUS "

	v, _ = g.SetView("list", 0, 3, maxX-2, maxY-1, 0)
	v.Title = " AIRCRAFT "
	return nil
}

func quit(*gocui.Gui, *gocui.View) error {
	return gocui.ErrQuit
}
