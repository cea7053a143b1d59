package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pupilla/internal/config"
	"pupilla/internal/dao"
	"pupilla/internal/vision"
	"pupilla/pkg/log"
)

var reflexInput string

var reflexCommand = &cobra.Command{
	Use:   "reflex",
	Short: "Check a flash photo for an abnormal pupil reflex",
	Run: func(cmd *cobra.Command, args []string) {
		if reflexInput == "" {
			logrus.Fatal("input photo path is required")
		}
		runReflex()
	},
}

func init() {
	reflexCommand.Flags().StringVarP(&reflexInput, "input", "i", "", "Path to the flash photo")
}

func runReflex() {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	analyzer, err := vision.NewAnalyzer(conf)
	if err != nil {
		logrus.Fatalf("failed to build analyzer: %v", err)
	}
	defer analyzer.Close()

	data, err := os.ReadFile(reflexInput)
	if err != nil {
		logrus.Fatalf("read photo: %v", err)
	}

	analysisId := strings.ReplaceAll(uuid.New().String(), "-", "")
	ctx, cancel := context.WithTimeout(context.Background(), conf.AnalysisTimeout())
	defer cancel()
	ctx = context.WithValue(ctx, log.CtxAnalysisId, analysisId)

	result, err := analyzer.AnalyzePhoto(ctx, data)
	if err != nil {
		logrus.Fatalf("reflex check failed: %v", err)
	}

	out, err := json.MarshalIndent(dao.FromReflexResult(result), "", "  ")
	if err != nil {
		logrus.Fatalf("marshal result: %v", err)
	}
	fmt.Println(string(out))
}
