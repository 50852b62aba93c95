// Copyright 2025 quartzdb
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/quartzdb/quartz/pkg/common"
	"github.com/quartzdb/quartz/pkg/importer"
	"github.com/quartzdb/quartz/pkg/operators"
	"github.com/quartzdb/quartz/pkg/storage"
	"github.com/quartzdb/quartz/pkg/util"
)

var runCfg = &util.Config{}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.AddCommand(demoCmd)
}

var defCfgFilePaths = []string{".", "etc"}
var cfgFileName = "quartz.toml"

func loadConfig() {
	for _, dirPath := range defCfgFilePaths {
		fpath := filepath.Join(dirPath, cfgFileName)
		if util.FileIsValid(fpath) {
			if _, err := toml.DecodeFile(fpath, runCfg); err != nil {
				util.Error("load config file failed",
					zap.String("fpath", fpath),
					zap.Error(err))
				os.Exit(1)
			}
			return
		}
	}
	// No config file; fall back to viper-managed defaults and env.
	viper.SetEnvPrefix("quartz")
	viper.AutomaticEnv()
	viper.SetDefault("targetChunkSize", 1000)
	viper.SetDefault("debug.printResult", true)
	viper.SetDefault("debug.printExplain", true)
	viper.SetDefault("debug.maxOutputRowCount", 20)
	runCfg.TargetChunkSize = viper.GetInt("targetChunkSize")
	runCfg.Data.Path = viper.GetString("data.path")
	runCfg.Data.Format = viper.GetString("data.format")
	runCfg.Debug.PrintResult = viper.GetBool("debug.printResult")
	runCfg.Debug.PrintExplain = viper.GetBool("debug.printExplain")
	runCfg.Debug.MaxOutputRow = viper.GetInt("debug.maxOutputRowCount")
}

var info = "quartz column store"
var rootCmd = &cobra.Command{
	Use:          "quartz",
	Short:        info,
	Long:         info,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("use quartz --help or -h")
	},
}

var demoInfo = "load a table, compress it and run a predicate scan"
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: demoInfo,
	Long:  demoInfo,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo()
	},
}

func runDemo() error {
	table := storage.NewTable(runCfg.TargetChunkSize)
	for _, col := range []struct {
		name     string
		typ      string
		nullable bool
	}{
		{"id", "int", false},
		{"name", "string", true},
		{"score", "double", true},
	} {
		if err := table.AddColumn(col.name, col.typ, col.nullable); err != nil {
			return err
		}
	}

	if err := loadRows(table); err != nil {
		return err
	}

	if err := storage.GStorageMgr.AddTable("people", table); err != nil {
		return err
	}
	defer storage.GStorageMgr.Reset()

	// Compress the loaded chunks; compressing the tail spawns a fresh
	// mutable one first.
	loadedChunks := table.ChunkCount()
	for chunkIdx := 0; chunkIdx < loadedChunks; chunkIdx++ {
		if err := table.CompressChunk(common.ChunkID(chunkIdx)); err != nil {
			return err
		}
	}

	scan := operators.NewTableScan(
		operators.NewGetTable("people"),
		common.ColumnID(2),
		operators.SCAN_GREATER_EQUAL,
		common.NewDoubleValue(50),
	)
	for _, op := range []operators.Operator{scan.Children()[0], scan} {
		if err := op.Execute(); err != nil {
			return err
		}
	}
	if runCfg.Debug.PrintExplain {
		fmt.Print(operators.Explain(scan))
	}

	output, err := scan.GetOutput()
	if err != nil {
		return err
	}
	util.Info("scan finished",
		zap.Uint64("inputRows", table.RowCount()),
		zap.Uint64("outputRows", output.RowCount()))
	if runCfg.Debug.PrintResult {
		if err = printTable(output, runCfg.Debug.MaxOutputRow); err != nil {
			return err
		}
	}
	return storage.GStorageMgr.Print(os.Stdout)
}

func loadRows(table *storage.Table) error {
	switch runCfg.Data.Format {
	case "csv":
		_, err := importer.ImportCsvFile(table, runCfg.Data.Path, importer.DefaultCsvOptions())
		return err
	case "parquet":
		_, err := importer.ImportParquetFile(table, runCfg.Data.Path)
		return err
	case "":
		return loadSampleRows(table)
	default:
		return fmt.Errorf("unknown data format %q", runCfg.Data.Format)
	}
}

func loadSampleRows(table *storage.Table) error {
	samples := []struct {
		id    int32
		name  string
		score float64
	}{
		{1, "Ada", 91.5},
		{2, "Grace", 88},
		{3, "Edsger", 47.25},
		{4, "Barbara", 73},
		{5, "Donald", 49.9},
		{6, "Frances", 95.125},
	}
	for _, s := range samples {
		row := []common.Value{
			common.NewIntValue(s.id),
			common.NewStringValue(s.name),
			common.NewDoubleValue(s.score),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	// One row with nulls so the demo exercises null handling end to end.
	return table.Append([]common.Value{
		common.NewIntValue(7),
		common.NewNullValue(common.DTID_STRING),
		common.NewNullValue(common.DTID_DOUBLE),
	})
}

func printTable(table *storage.Table, maxRows int) error {
	for col := 0; col < table.ColumnCount(); col++ {
		name, err := table.ColumnName(common.ColumnID(col))
		if err != nil {
			return err
		}
		if col > 0 {
			fmt.Print(" | ")
		}
		fmt.Print(name)
	}
	fmt.Println()
	printed := 0
	for chunkIdx := 0; chunkIdx < table.ChunkCount(); chunkIdx++ {
		chunk, err := table.GetChunk(common.ChunkID(chunkIdx))
		if err != nil {
			return err
		}
		for offset := 0; offset < chunk.Size(); offset++ {
			if maxRows > 0 && printed >= maxRows {
				return nil
			}
			for col := 0; col < chunk.ColumnCount(); col++ {
				seg, err := chunk.GetSegment(common.ColumnID(col))
				if err != nil {
					return err
				}
				val, err := seg.At(common.ChunkOffset(offset))
				if err != nil {
					return err
				}
				if col > 0 {
					fmt.Print(" | ")
				}
				fmt.Print(val.String())
			}
			fmt.Println()
			printed++
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		util.Error("quartz failed", zap.Error(err))
		os.Exit(1)
	}
}
