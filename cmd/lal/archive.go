package main

import (
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
)

var archiveLevel int

var archiveCmd = &cobra.Command{
	Use:   "archive <path>",
	Short: "zstd-compress a closed log and its sidecar for cold storage",
	Long: "archive compresses a closed log file and its .fmt sidecar into " +
		"path.zst and path.fmt.zst. It never touches the live wire format: " +
		"a log must be closed before archiving, and the result must be " +
		"decompressed before the analyzer can read it again.",
	Args: cobra.ExactArgs(1),
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().IntVar(&archiveLevel, "level", int(zstd.SpeedDefault), "zstd compression level (1=fastest .. 4=best)")
}

func runArchive(cmd *cobra.Command, args []string) error {
	path := args[0]
	if err := archiveFile(path, path+".zst"); err != nil {
		return err
	}
	return archiveFile(path+".fmt", path+".fmt.zst")
}

func archiveFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.EncoderLevel(archiveLevel)))
	if err != nil {
		return err
	}
	if _, err := io.Copy(enc, in); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
