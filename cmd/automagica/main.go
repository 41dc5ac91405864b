package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OakwoodAI/Automagica/internal/activities"
	"github.com/OakwoodAI/Automagica/internal/config"
	"github.com/OakwoodAI/Automagica/internal/history"
	"github.com/OakwoodAI/Automagica/internal/input"
	"github.com/OakwoodAI/Automagica/internal/logging"
	"github.com/OakwoodAI/Automagica/internal/ocr"
	"github.com/OakwoodAI/Automagica/internal/screen"
	"github.com/OakwoodAI/Automagica/internal/target"
	"github.com/OakwoodAI/Automagica/pkg/templates"
)

func main() {
	configPath := flag.String("config", "Settings.ini", "Path to settings file")
	timeout := flag.Duration("timeout", 0, "Override wait timeout (e.g. 10s)")
	confidence := flag.Float64("confidence", 0, "Override confidence threshold")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}
	command := args[0]

	cfg := loadConfig(*configPath)
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *confidence > 0 {
		cfg.Confidence = *confidence
	}

	acts, cleanup, err := assemble(cfg, command)
	if err != nil {
		log.Fatalf("Setup failed: %v", err)
	}
	defer cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, acts, command, args[1:]); err != nil {
		log.Fatalf("%s failed: %v", command, err)
	}
}

func usage() {
	fmt.Println("Usage: automagica [flags] <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  wait-image <template>     Wait until the template appears")
	fmt.Println("  locate-image <template>   Find the template in one capture")
	fmt.Println("  click-image <template>    Wait for the template and click it")
	fmt.Println("  click-text <text>         Wait for the text and click it")
	fmt.Println("  read                      Print all recognized screen text")
	fmt.Println("  screenshot <path>         Save the screen as PNG")
	fmt.Println("  history [limit]           Show recent operations")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

func loadConfig(path string) *config.Config {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.NewDefaultConfig()
	}
	cfg, err := config.LoadFromINI(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func assemble(cfg *config.Config, command string) (*activities.Activities, func(), error) {
	logger := logging.New("automagica").SetMinLevel(logging.ParseLevel(cfg.LogLevel))

	capturer, err := screen.NewDisplayCapturer()
	if err != nil {
		return nil, nil, fmt.Errorf("display unavailable: %w", err)
	}

	actuator := input.NewRobotActuator().WithSettleDelay(cfg.SettleDelay)

	// OCR is only probed when the command actually reads text.
	var recognizer ocr.Recognizer
	if command == "click-text" || command == "read" {
		tess, err := ocr.NewTesseract(ocr.TesseractConfig{
			Language:    cfg.OCRLanguage,
			TessdataDir: cfg.TessdataDir,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("OCR unavailable: %w", err)
		}
		recognizer = tess
	}

	registry := templates.NewRegistry(cfg.TemplateDir)
	if _, err := os.Stat(cfg.TemplateManifest); err == nil {
		if err := registry.LoadFromFile(cfg.TemplateManifest); err != nil {
			return nil, nil, fmt.Errorf("loading template manifest: %w", err)
		}
	}

	var store *history.Store
	cleanup := func() {}
	if cfg.HistoryEnabled || command == "history" {
		store, err = history.Open(cfg.HistoryPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening history: %w", err)
		}
		if err := store.Migrate(); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("migrating history: %w", err)
		}
		cleanup = func() { store.Close() }
	}

	acts := activities.New(capturer, actuator, recognizer, registry, store, logger, activities.Defaults{
		Timeout:    cfg.Timeout,
		Interval:   cfg.Interval,
		Confidence: cfg.Confidence,
		Grayscale:  cfg.GrayscaleOnly,
	})
	return acts, cleanup, nil
}

func run(ctx context.Context, acts *activities.Activities, command string, args []string) error {
	switch command {
	case "wait-image":
		if len(args) < 1 {
			return fmt.Errorf("wait-image needs a template name")
		}
		point, err := acts.WaitForImage(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Found %s at (%d, %d) with confidence %.2f\n",
			args[0], point.X, point.Y, point.Match.Confidence)
		return nil

	case "locate-image":
		if len(args) < 1 {
			return fmt.Errorf("locate-image needs a template name")
		}
		point, err := acts.LocateImage(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Found %s at (%d, %d) with confidence %.2f\n",
			args[0], point.X, point.Y, point.Match.Confidence)
		return nil

	case "click-image":
		if len(args) < 1 {
			return fmt.Errorf("click-image needs a template name")
		}
		point, err := acts.ClickImage(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Clicked %s at (%d, %d)\n", args[0], point.X, point.Y)
		return nil

	case "click-text":
		if len(args) < 1 {
			return fmt.Errorf("click-text needs the text to find")
		}
		point, err := acts.ClickText(ctx, args[0], target.ExactText(args[0]))
		if err != nil {
			return err
		}
		fmt.Printf("Clicked %q at (%d, %d)\n", args[0], point.X, point.Y)
		return nil

	case "read":
		words, err := acts.ReadScreen(ctx)
		if err != nil {
			return err
		}
		for _, word := range words {
			center := word.Region.Center()
			fmt.Printf("%-24s (%d, %d) %.2f\n", word.Text, center.X, center.Y, word.Confidence)
		}
		return nil

	case "screenshot":
		if len(args) < 1 {
			return fmt.Errorf("screenshot needs an output path")
		}
		if err := acts.Screenshot(args[0]); err != nil {
			return err
		}
		fmt.Printf("Saved screenshot to %s\n", args[0])
		return nil

	case "history":
		return showHistory(acts, args)

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func showHistory(acts *activities.Activities, args []string) error {
	limit := 20
	if len(args) > 0 {
		fmt.Sscanf(args[0], "%d", &limit)
	}

	ops, err := acts.History(limit)
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		fmt.Println("No operations recorded yet.")
		return nil
	}

	fmt.Printf("%-20s %-20s %-10s %-8s %s\n", "OPERATION", "TARGET", "STATUS", "ELAPSED", "RECORDED")
	for _, op := range ops {
		fmt.Printf("%-20s %-20s %-10s %-8s %s\n",
			op.Operation, op.Target, op.Status,
			op.Elapsed.Round(time.Millisecond),
			op.RecordedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
