// Command reconcile promotes generating certificates of one course to
// downloadable when the credential provider has approved them.
//
//	go run ./cmd/reconcile -course course-v1:DemoX+CERT101+2026_T1
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"certifier/internal/app"
	"certifier/internal/certificate/models"
	"certifier/internal/platform/config"
	"certifier/internal/platform/logger"
)

func main() {
	course := flag.String("course", "", "Course key to reconcile (required)")
	flag.Parse()

	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	courseID, err := models.ParseCourseID(*course)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -course: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log, prometheus.NewRegistry())
	if err != nil {
		log.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	defer a.Close() //nolint:errcheck // process exits right after

	result, err := a.Service.ReconcileCourse(ctx, courseID)
	if err != nil {
		log.Error("reconciliation failed", "course_id", courseID.String(), "error", err)
		os.Exit(1)
	}

	log.Info("reconciliation finished",
		"course_id", result.CourseID.String(),
		"approved", result.Approved,
		"checked", result.Checked,
		"transitioned", result.Transitioned,
		"skipped", result.Skipped,
	)
}
