package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go-radiomics-extractor/internal/config"
	"go-radiomics-extractor/internal/container"
	"go-radiomics-extractor/internal/storage"
	"go-radiomics-extractor/internal/volume"
)

var extractParallel bool

var rootCmd = &cobra.Command{
	Use:   "radiomics",
	Short: "Radiomic feature extraction for 3D medical volumes",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the extraction HTTP service",
	Run:   runServe,
}

var extractCmd = &cobra.Command{
	Use:   "extract <file> [file...]",
	Short: "Extract features from volume files and print the batch result as JSON",
	Args:  cobra.MinimumNArgs(1),
	Run:   runExtract,
}

var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Write a synthetic sample volume in the raw container format",
	Args:  cobra.ExactArgs(1),
	Run:   runGenerate,
}

func init() {
	extractCmd.Flags().BoolVarP(&extractParallel, "parallel", "p", false,
		"process files across a worker pool instead of sequentially")
	rootCmd.AddCommand(serveCmd, extractCmd, generateCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	server := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      c.Handler(),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"address": cfg.ServerAddress(),
			"timeout": cfg.RequestTimeout,
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Fatal("Server forced to shutdown")
	}

	logrus.Info("Server exited")
}

func runExtract(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	result := c.Extractor().Extract(args, extractParallel)

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(encoded))

	if !result.Success {
		os.Exit(1)
	}
}

// runGenerate writes a 32x32x16 volume holding a bright spherical lesion
// over a dark background, enough to exercise every feature family.
func runGenerate(cmd *cobra.Command, args []string) {
	vol := volume.New(32, 32, 16, volume.Spacing{X: 1, Y: 1, Z: 2})
	cx, cy, cz, radius := 16.0, 16.0, 8.0, 6.0
	for z := 0; z < vol.NZ; z++ {
		for y := 0; y < vol.NY; y++ {
			for x := 0; x < vol.NX; x++ {
				dx := float64(x) - cx
				dy := float64(y) - cy
				dz := (float64(z) - cz) * 2
				d := math.Sqrt(dx*dx + dy*dy + dz*dz)
				if d <= radius {
					vol.Set(x, y, z, 100+20*(radius-d))
				}
			}
		}
	}

	if err := storage.WriteRaw(args[0], vol); err != nil {
		log.Fatalf("Failed to write sample volume: %v", err)
	}
	fmt.Printf("Wrote sample volume to %s\n", args[0])
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
