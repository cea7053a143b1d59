package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pupilla/internal/config"
	"pupilla/internal/dao"
	"pupilla/internal/vision"
	"pupilla/pkg/log"
)

var analyzeInput string

var analyzeCommand = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a local video file for lazy eye indicators",
	Long:  `Runs the full displacement pipeline over a local video file and prints the analysis as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		if analyzeInput == "" {
			logrus.Fatal("input video path is required")
		}
		runAnalyze()
	},
}

func init() {
	analyzeCommand.Flags().StringVarP(&analyzeInput, "input", "i", "", "Path to the video file")
}

func runAnalyze() {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	analyzer, err := vision.NewAnalyzer(conf)
	if err != nil {
		logrus.Fatalf("failed to build analyzer: %v", err)
	}
	defer analyzer.Close()

	analysisId := strings.ReplaceAll(uuid.New().String(), "-", "")
	ctx, cancel := context.WithTimeout(context.Background(), conf.AnalysisTimeout())
	defer cancel()
	ctx = context.WithValue(ctx, log.CtxAnalysisId, analysisId)

	result, err := analyzer.AnalyzeVideo(ctx, analyzeInput)
	if err != nil {
		logrus.Fatalf("analysis failed: %v", err)
	}

	out, err := json.MarshalIndent(dao.FromResult(result), "", "  ")
	if err != nil {
		logrus.Fatalf("marshal result: %v", err)
	}
	fmt.Println(string(out))
}
