package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/class-schedule-api/internal/dto"
	"github.com/noah-isme/class-schedule-api/internal/importer"
	"github.com/noah-isme/class-schedule-api/internal/models"
	"github.com/noah-isme/class-schedule-api/internal/repository"
	"github.com/noah-isme/class-schedule-api/internal/scheduler"
	"github.com/noah-isme/class-schedule-api/internal/service"
	"github.com/noah-isme/class-schedule-api/pkg/config"
	"github.com/noah-isme/class-schedule-api/pkg/logger"
	"github.com/noah-isme/class-schedule-api/pkg/storage"
)

const usage = `usage:
  schedule-cli generate -data DIR -semester ID [-batch ID -section S] [-format csv|pdf|xlsx|json] [-out DIR]
  schedule-cli token -user ID -role ADMIN|SCHEDULER|INSTRUCTOR|STUDENT [-ttl 1h]`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	switch os.Args[1] {
	case "generate":
		err = runGenerate(cfg, logr, os.Args[2:])
	case "token":
		err = runToken(cfg, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logr.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		os.Exit(1)
	}
}

func runGenerate(cfg *config.Config, logr *zap.Logger, args []string) error {
	var (
		dataDir    string
		semesterID string
		batchID    string
		section    string
		format     string
		outDir     string
	)
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	fs.StringVar(&dataDir, "data", ".", "Directory holding batches.csv, semesters.csv, instructors.csv, rooms.csv and courses.csv")
	fs.StringVar(&semesterID, "semester", "", "Semester ID to generate")
	fs.StringVar(&batchID, "batch", "", "Batch ID; omit to generate every batch")
	fs.StringVar(&section, "section", "", "Section label, required with -batch")
	fs.StringVar(&format, "format", string(models.ExportFormatCSV), "Output format")
	fs.StringVar(&outDir, "out", "out", "Output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if semesterID == "" {
		return fmt.Errorf("-semester is required")
	}
	if batchID != "" && section == "" {
		return fmt.Errorf("-section is required with -batch")
	}

	ctx := context.Background()
	store := repository.NewMemoryStore()
	courses := service.NewCourseService(store, store, nil, logr)
	if _, err := importer.New(os.DirFS(dataDir), courses, logr).Load(ctx, store); err != nil {
		return err
	}

	engine := scheduler.NewEngine(store, logr)
	schedules := service.NewScheduleService(store, store, engine, scheduler.NewOrchestrator(engine, store, logr), nil, nil, nil, nil, logr, service.ScheduleServiceConfig{
		Days:          cfg.Scheduler.Days,
		Morning:       scheduler.ShiftWindow{Start: cfg.Scheduler.Morning.Start, End: cfg.Scheduler.Morning.End},
		Afternoon:     scheduler.ShiftWindow{Start: cfg.Scheduler.Afternoon.Start, End: cfg.Scheduler.Afternoon.End},
		PeriodsPerDay: cfg.Scheduler.PeriodsPerDay,
	})

	var ids []string
	if batchID != "" {
		res, err := schedules.Generate(ctx, dto.GenerateScheduleRequest{BatchID: batchID, SemesterID: semesterID, Section: section})
		if err != nil {
			return err
		}
		report(logr, batchID, section, res.Conflicts, res.Warnings)
		ids = append(ids, res.Schedule.ID)
	} else {
		res, err := schedules.GenerateAll(ctx, dto.GenerateAllSchedulesRequest{SemesterID: semesterID})
		if err != nil {
			return err
		}
		for _, s := range res.Schedules {
			report(logr, s.BatchID, s.Section, s.Conflicts, s.Warnings)
			ids = append(ids, s.ScheduleID)
		}
		for _, c := range res.TotalConflicts {
			logr.Warn("cross-section conflict", zap.String("type", string(c.Type)), zap.String("message", c.Message))
		}
	}

	out, err := storage.NewDir(outDir)
	if err != nil {
		return err
	}
	exports := service.NewExportService(store, store, logr)
	for _, id := range ids {
		file, err := exports.Export(ctx, id, models.ExportFormat(strings.ToLower(format)))
		if err != nil {
			return err
		}
		path, err := out.Save(file.Filename, file.Body)
		if err != nil {
			return err
		}
		fmt.Println(path)
	}
	return nil
}

func report(logr *zap.Logger, batchID, section string, conflicts []models.Conflict, warnings []string) {
	logr.Info("section generated",
		zap.String("batch_id", batchID),
		zap.String("section", section),
		zap.Int("conflicts", len(conflicts)),
		zap.Int("warnings", len(warnings)),
	)
	for _, w := range warnings {
		logr.Warn(w, zap.String("batch_id", batchID), zap.String("section", section))
	}
}

func runToken(cfg *config.Config, args []string) error {
	var (
		userID string
		role   string
		ttl    time.Duration
	)
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	fs.StringVar(&userID, "user", "", "Subject user ID")
	fs.StringVar(&role, "role", string(models.RoleAdmin), "Role claim")
	fs.DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if userID == "" {
		return fmt.Errorf("-user is required")
	}

	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	token, expires, err := tokens.Issue(userID, models.UserRole(strings.ToUpper(role)), ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expires.UTC().Format(time.RFC3339))
	return nil
}
