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

	"github.com/ostafen/memefs/internal/fs"
	"github.com/ostafen/memefs/internal/memefs"
	fmtutil "github.com/ostafen/memefs/pkg/util/format"
	"github.com/spf13/cobra"
)

func DefineInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "info <image_path>",
		Short:        "Print the superblock and directory of a MEMEfs image",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunInfo,
	}
}

func RunInfo(cmd *cobra.Command, args []string) error {
	vol, err := loadImage(args[0])
	if err != nil {
		return err
	}

	sb := vol.Super()
	fmt.Println(sb.String())
	fmt.Println()

	names := vol.Names()
	if len(names) == 0 {
		fmt.Println("Directory is empty.")
		return nil
	}

	fmt.Printf("--- Directory (%d files) ---\n", len(names))
	for _, name := range names {
		slot, _ := vol.Lookup(name)
		e := vol.Entry(slot)
		fmt.Printf("%-12s  %8s  mode %04o  uid %d gid %d  %s\n",
			name, fmtutil.FormatBytes(int64(e.Size)), e.Type&0o777,
			e.OwnerUID, e.GroupGID, e.Timestamp)
	}
	return nil
}

// loadImage reads a full image into memory without keeping the file open.
func loadImage(path string) (*memefs.Volume, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %q: %w", path, err)
	}
	defer f.Close()

	data := make([]byte, memefs.ImageSize)
	if _, err := f.ReadAt(data, 0); err != nil {
		return nil, fmt.Errorf("failed to read image %q: %w", path, err)
	}
	return memefs.Load(data)
}
