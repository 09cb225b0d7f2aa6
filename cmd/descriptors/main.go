package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/zernike3d/pkg/batch"
	"github.com/itohio/zernike3d/pkg/logger"
)

func main() {
	var (
		dir       string
		order     int
		threads   int
		queueSize int
		outputDir string
		logConf   string
	)

	flag.StringVar(&dir, "dir", "", "Path to directory with .binvox files.")
	flag.StringVar(&dir, "d", "", "Shorthand for -dir.")
	flag.IntVar(&order, "max-order", 0, "Maximum order of Zernike moments. N in the original paper.")
	flag.IntVar(&order, "n", 0, "Shorthand for -max-order.")
	flag.IntVar(&threads, "threads", batch.DefaultThreads, "Maximum number of threads for descriptor computing.")
	flag.IntVar(&threads, "t", batch.DefaultThreads, "Shorthand for -threads.")
	flag.IntVar(&queueSize, "queue-size", batch.DefaultQueueSize, "Maximum size of the file path queue; the directory scan pauses while it is full.")
	flag.IntVar(&queueSize, "s", batch.DefaultQueueSize, "Shorthand for -queue-size.")
	flag.StringVar(&outputDir, "output-dir", batch.DefaultOutputDir, "Path to output directory for descriptor files.")
	flag.StringVar(&outputDir, "o", batch.DefaultOutputDir, "Shorthand for -output-dir.")
	flag.StringVar(&logConf, "logconf", "logsettings.yaml", "Path to YAML file with log settings.")
	flag.StringVar(&logConf, "l", "logsettings.yaml", "Shorthand for -logconf.")
	flag.Parse()

	if err := run(dir, order, threads, queueSize, outputDir, logConf); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dir string, order, threads, queueSize int, outputDir, logConf string) error {
	if dir == "" {
		return fmt.Errorf("input directory is required; see -help")
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory or does not exist", dir)
	}
	if order <= 0 {
		return fmt.Errorf("maximum order must be positive, got %d", order)
	}
	if threads <= 0 {
		return fmt.Errorf("number of threads must be positive, got %d", threads)
	}
	if queueSize <= 0 {
		return fmt.Errorf("queue size must be positive, got %d", queueSize)
	}

	if err := logger.Setup(logConf); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return batch.Run(ctx, dir, order,
		batch.WithThreads(threads),
		batch.WithQueueSize(queueSize),
		batch.WithOutputDir(outputDir),
	)
}
