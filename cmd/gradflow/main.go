// Package main provides the gradflow CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"github.com/gradflow-ml/gradflow/internal/train"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("gradflow %s\n", version)
	case "train":
		if err := runTrain(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "gradflow train: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("gradflow - expression-graph training engine")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version              Show version")
	fmt.Println("  train -c FILE        Train a model from a YAML config")
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	configPath := fs.String("c", "", "path to the YAML training config")
	gpu := fs.Bool("gpu", false, "use the WebGPU backend when available")
	klog.InitFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		fs.Usage()
		return fmt.Errorf("-c is required")
	}

	cfg, err := train.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	backend, release := selectBackend(*gpu)
	defer release()
	klog.Infof("training on %s", backend.Name())

	trainer, err := train.New(cfg, backend)
	if err != nil {
		return err
	}
	return trainer.Run()
}
