// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package cmd

import (
	"fmt"
	"os"

	"github.com/google/renameio"
	"github.com/ostafen/memefs/internal/memefs"
	fmtutil "github.com/ostafen/memefs/pkg/util/format"
	"github.com/spf13/cobra"
)

func DefineMkfsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mkfs <image_path>",
		Short: "Format a fresh MEMEfs image",
		Long: `The 'mkfs' command writes a freshly formatted MEMEfs image to the given path.
The image is written atomically: it is staged in a temporary file and renamed
into place, so an interrupted format never leaves a truncated image behind.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunMkfs,
	}

	cmd.Flags().StringP("label", "l", "", "volume label (at most 16 bytes)")
	cmd.Flags().BoolP("force", "f", false, "overwrite an existing image")
	return cmd
}

func RunMkfs(cmd *cobra.Command, args []string) error {
	path := args[0]
	label, _ := cmd.Flags().GetString("label")
	force, _ := cmd.Flags().GetBool("force")

	if len(label) > 16 {
		return fmt.Errorf("volume label %q exceeds 16 bytes", label)
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("image %s already exists (use --force to overwrite)", path)
	}

	vol := memefs.Format(label)
	if err := renameio.WriteFile(path, vol.Marshal(), 0644); err != nil {
		return fmt.Errorf("failed to write image %s: %w", path, err)
	}

	fmt.Printf("[INFO] Formatted %s: %s, %d user blocks, %d directory entries\n",
		path, fmtutil.FormatBytes(memefs.ImageSize), memefs.NumUserBlocks, memefs.NumDirEntries)
	return nil
}
