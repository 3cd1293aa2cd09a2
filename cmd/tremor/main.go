package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/ayusman/tremor/internal/config"
	"github.com/ayusman/tremor/internal/detector"
	"github.com/ayusman/tremor/internal/report"
	"github.com/ayusman/tremor/internal/session"
	"github.com/ayusman/tremor/internal/store"
	"github.com/ayusman/tremor/internal/tremor"
	"github.com/ayusman/tremor/internal/video"
)

func main() {
	fmt.Println("Tremor - Hand Tremor Amplitude Measurement")

	// Optional .env in the working directory for local overrides.
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", envOr("TREMOR_CONFIG", ""), "path to a YAML config file")
		videoPath  = flag.String("video", "", "path to the video to analyze (batch mode)")
		depthCm    = flag.Float64("depth", 0, "camera-to-hand distance in cm (batch mode)")
		tremorType = flag.String("type", string(tremor.Resting), "tremor type: resting or postural (batch mode)")
		outDir     = flag.String("out", ".", "directory for CSV and plot output")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		var cerr *config.ConfigError
		if errors.As(err, &cerr) {
			log.Fatalf("Invalid config: %v", cerr)
		}
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize the store
	dbPath := os.Getenv("TREMOR_DB")
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}

		dbDir := filepath.Join(homeDir, ".tremor")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		dbPath = filepath.Join(dbDir, "tremor.db")
	}

	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	var params session.Params
	if cfg.AutoMode {
		params, err = batchParams(*videoPath, *depthCm, *tremorType)
	} else {
		params, err = promptParams(os.Stdin)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}

	det, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to initialize detector: %v", err)
	}
	defer det.Close()

	ctrl := session.New(cfg)
	ctrl.Progress = true

	rep, err := ctrl.Run(video.NewFileSource(params.VideoPath), det, params)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	fmt.Printf("\nTremor amplitude (%s): %.3f mm (error bound %.3f mm, %.0f%% of frames missing)\n",
		rep.TremorType, rep.AmplitudeMm, rep.ErrorMm, rep.MissingFraction*100)

	if err := persist(st, rep); err != nil {
		log.Fatalf("Failed to save session: %v", err)
	}
	if err := export(*outDir, rep, cfg.ShowPlotLegend); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
}

// batchParams builds run parameters from command-line flags.
func batchParams(videoPath string, depthCm float64, tremorType string) (session.Params, error) {
	if videoPath == "" {
		return session.Params{}, fmt.Errorf("batch mode requires -video")
	}
	if depthCm <= 0 {
		return session.Params{}, fmt.Errorf("batch mode requires -depth greater than zero")
	}
	tt, err := tremor.ParseType(tremorType)
	if err != nil {
		return session.Params{}, err
	}
	return session.Params{VideoPath: videoPath, DepthCm: depthCm, TremorType: tt}, nil
}

// promptParams reads run parameters interactively.
func promptParams(in *os.File) (session.Params, error) {
	r := bufio.NewReader(in)

	videoPath, err := prompt(r, "Video file path: ")
	if err != nil {
		return session.Params{}, err
	}

	depthStr, err := prompt(r, "Distance from camera to hand (cm): ")
	if err != nil {
		return session.Params{}, err
	}
	depthCm, err := strconv.ParseFloat(depthStr, 64)
	if err != nil {
		return session.Params{}, fmt.Errorf("invalid distance %q: %w", depthStr, err)
	}

	typeStr, err := prompt(r, "Tremor type (resting/postural): ")
	if err != nil {
		return session.Params{}, err
	}
	tt, err := tremor.ParseType(typeStr)
	if err != nil {
		return session.Params{}, err
	}

	return session.Params{VideoPath: videoPath, DepthCm: depthCm, TremorType: tt}, nil
}

func prompt(r *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := r.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// persist saves the report and its per-landmark measurements.
func persist(st *store.Store, rep *session.Report) error {
	s := &store.Session{
		ID:              uuid.NewString(),
		VideoPath:       rep.VideoPath,
		DepthCm:         rep.DepthCm,
		TremorType:      string(rep.TremorType),
		AmplitudeMm:     rep.AmplitudeMm,
		ErrorMm:         rep.ErrorMm,
		MissingFraction: rep.MissingFraction,
		StartFrame:      rep.StartFrame,
		EndFrame:        rep.EndFrame,
	}

	landmarks := make([]store.LandmarkMeasurement, 0, len(rep.PerLandmark))
	for _, m := range rep.PerLandmark {
		landmarks = append(landmarks, store.LandmarkMeasurement{
			LandmarkIndex:   m.LandmarkID,
			AmplitudeMm:     m.AmplitudeMm,
			ErrorMm:         m.ErrorMm,
			ValidSamples:    m.ValidSamples,
			MissingFraction: m.MissingFraction,
		})
	}

	return st.Sessions().Create(s, landmarks)
}

// export writes the summary CSV, per-landmark CSV and displacement plot.
func export(dir string, rep *session.Report, legend bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	reps := []*session.Report{rep}

	f, err := os.Create(filepath.Join(dir, "results.csv"))
	if err != nil {
		return err
	}
	if err := report.WriteCSV(f, reps); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	lf, err := os.Create(filepath.Join(dir, "landmarks.csv"))
	if err != nil {
		return err
	}
	if err := report.WriteLandmarkCSV(lf, reps); err != nil {
		lf.Close()
		return err
	}
	if err := lf.Close(); err != nil {
		return err
	}

	plotPath := filepath.Join(dir, "displacement.png")
	if err := report.SavePlot(plotPath, rep, legend); err != nil {
		return err
	}

	fmt.Printf("Results written to %s\n", dir)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
