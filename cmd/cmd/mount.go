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
	"os"

	"github.com/ostafen/memefs/internal/fuse"
	"github.com/ostafen/memefs/internal/logger"
	"github.com/ostafen/memefs/internal/memefs"
	"github.com/spf13/cobra"
)

// DefaultImagePath is where the daemon looks for its image when no --image
// flag is given.
const DefaultImagePath = "./myfilesystem.img"

func DefineMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mount <mountpoint>",
		Short: "Mount a MEMEfs image to a specified mountpoint",
		Long: `The 'mount' command loads a MEMEfs image into memory and surfaces it through
FUSE at the given mountpoint. The daemon serves filesystem operations until it
receives SIGINT or SIGTERM; on a clean unmount the full image is serialized
back to the file and the filesystem version is incremented.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunMount,
	}

	cmd.Flags().StringP("image", "i", DefaultImagePath, "path to the backing image file")
	return cmd
}

func RunMount(cmd *cobra.Command, args []string) error {
	imagePath, _ := cmd.Flags().GetString("image")
	logLevel, _ := cmd.Flags().GetString("log-level")

	log := logger.New(os.Stdout, logger.ParseLevel(logLevel))

	vol, err := memefs.Mount(imagePath)
	if err != nil {
		return err
	}

	sb := vol.Super()
	log.Infof("loaded image %s (version %d, label %q, %d blocks free)",
		imagePath, sb.FSVersion, sb.Label(), vol.FreeBlocks())

	if err := fuse.Mount(args[0], vol); err != nil {
		vol.Close()
		return err
	}

	log.Infof("serializing image back to %s", imagePath)
	return vol.Unmount()
}
