package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/pool"
	"github.com/dargueta/blocksim/profiles"
	"github.com/urfave/cli/v2"
)

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "strategy",
			Usage: "Show the active allocation strategy",
			Subcommands: []*cli.Command{
				{
					Name:      "set",
					Usage:     "Select FAT32, NTFS, EXT or NONE",
					ArgsUsage: "STRATEGY",
					Action:    mutating(setStrategy),
				},
			},
			Action: reading(showStrategy),
		},
		{
			Name:   "profiles",
			Usage:  "Describe every allocation strategy",
			Action: reading(showProfiles),
		},
		{
			Name:      "create",
			Usage:     "Create a file in the current directory",
			ArgsUsage: "NAME BLOCKS",
			Flags:     contentFlags(),
			Action:    mutating(createFile),
		},
		{
			Name:      "replace",
			Usage:     "Save new contents over a file, reallocating its blocks",
			ArgsUsage: "NAME BLOCKS",
			Flags:     contentFlags(),
			Action:    mutating(replaceFile),
		},
		{
			Name:      "move",
			Usage:     "Move a file to another directory",
			ArgsUsage: "NAME DIRECTORY",
			Action:    mutating(moveFile),
		},
		{
			Name:      "delete",
			Usage:     "Delete a file and free its blocks",
			ArgsUsage: "NAME",
			Action:    mutating(deleteFile),
		},
		{
			Name:   "table",
			Usage:  "Show the FAT32 allocation table",
			Action: reading(showAllocationTable),
		},
		{
			Name:   "mft",
			Usage:  "Show the NTFS master file table",
			Action: reading(showMFT),
		},
		{
			Name:   "journal",
			Usage:  "Show the EXT journal",
			Action: reading(showJournal),
		},
		{
			Name:   "usage",
			Usage:  "Show reserved, used and free blocks",
			Action: reading(showUsage),
		},
		{
			Name:   "files",
			Usage:  "List every tracked file and the strategies that recorded it",
			Action: reading(showFiles),
		},
		{
			Name:   "ls",
			Usage:  "List the current directory in storage",
			Action: reading(listDirectory),
		},
		{
			Name:      "cd",
			Usage:     "Change the directory new files are written to",
			ArgsUsage: "DIRECTORY",
			Action:    mutating(changeDirectory),
		},
		{
			Name:  "export",
			Usage: "Export the file listing as CSV",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "write to this file instead of stdout",
				},
			},
			Action: reading(exportFiles),
		},
		{
			Name:  "format",
			Usage: "Wipe all metadata and resize the disk",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:  "blocks",
					Usage: "number of blocks on the disk",
					Value: 1000,
				},
				&cli.StringFlag{
					Name:  "policy",
					Usage: "block placement policy: cursor or first-fit",
					Value: string(pool.PolicyCursor),
				},
			},
			Action: mutating(formatDisk),
		},
		{
			Name:   "check",
			Usage:  "Verify the block accounting",
			Action: reading(checkConsistency),
		},
	}
}

func contentFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "content",
			Aliases: []string{"c"},
			Usage:   "file contents",
		},
		&cli.PathFlag{
			Name:  "from",
			Usage: "read the file contents from this host file",
		},
	}
}

func requireArgs(c *cli.Context, count int) error {
	if c.NArg() != count {
		return blocksim.ErrInvalidInput.WithMessage(
			fmt.Sprintf(
				"expected %d argument(s), got %d\nUsage: %s %s",
				count,
				c.NArg(),
				c.Command.HelpName,
				c.Command.ArgsUsage))
	}
	return nil
}

// fileArgs parses the NAME BLOCKS arguments and the content flags.
func fileArgs(c *cli.Context) (name string, blocks int, content string, err error) {
	if err = requireArgs(c, 2); err != nil {
		return
	}

	name = c.Args().Get(0)
	blocks, err = strconv.Atoi(c.Args().Get(1))
	if err != nil {
		err = blocksim.ErrInvalidInput.Wrap(err)
		return
	}

	content = c.String("content")
	if source := c.Path("from"); source != "" {
		data, readErr := os.ReadFile(source)
		if readErr != nil {
			err = blocksim.ErrStorageIO.Wrap(readErr)
			return
		}
		content = string(data)
	}
	return
}

func setStrategy(c *cli.Context, s *session) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	strategy, err := blocksim.ParseStrategy(c.Args().First())
	if err != nil {
		return err
	}
	if err = s.fs.SetStrategy(strategy); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Selected %s.\n", strategy)
	return renderUsage(c.App.Writer, s.fs.Usage())
}

func showStrategy(c *cli.Context, s *session) error {
	if c.Bool("json") {
		return renderJSON(c.App.Writer, s.fs.Profile())
	}
	return renderProfile(c.App.Writer, s.fs.Profile())
}

func showProfiles(c *cli.Context, _ *session) error {
	all := profiles.All()
	if c.Bool("json") {
		return renderJSON(c.App.Writer, all)
	}
	for i, profile := range all {
		if i > 0 {
			fmt.Fprintln(c.App.Writer)
		}
		if err := renderProfile(c.App.Writer, profile); err != nil {
			return err
		}
	}
	return nil
}

func createFile(c *cli.Context, s *session) error {
	name, blocks, content, err := fileArgs(c)
	if err != nil {
		return err
	}
	extent, err := s.fs.Create(name, blocks, content)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Created %s with %d blocks at %s.\n", name, blocks, extent)
	return nil
}

func replaceFile(c *cli.Context, s *session) error {
	name, blocks, content, err := fileArgs(c)
	if err != nil {
		return err
	}
	extent, err := s.fs.Replace(name, blocks, content)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Saved %s with %d blocks at %s.\n", name, blocks, extent)
	return nil
}

func moveFile(c *cli.Context, s *session) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	newPath, err := s.fs.Move(c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Moved to %s.\n", newPath)
	return nil
}

func deleteFile(c *cli.Context, s *session) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	if err := s.fs.Delete(c.Args().First()); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Deleted %s.\n", c.Args().First())
	return nil
}

func showAllocationTable(c *cli.Context, s *session) error {
	if c.Bool("json") {
		return renderJSON(c.App.Writer, s.fs.AllocationTable())
	}
	return renderAllocationTable(c.App.Writer, s.fs.AllocationTable())
}

func showMFT(c *cli.Context, s *session) error {
	if c.Bool("json") {
		return renderJSON(c.App.Writer, s.fs.MFT())
	}
	return renderMFT(c.App.Writer, s.fs.MFT())
}

func showJournal(c *cli.Context, s *session) error {
	if c.Bool("json") {
		return renderJSON(c.App.Writer, s.fs.Journal())
	}
	return renderJournal(c.App.Writer, s.fs.Journal())
}

func showUsage(c *cli.Context, s *session) error {
	if c.Bool("json") {
		return renderJSON(c.App.Writer, s.fs.Usage())
	}
	return renderUsage(c.App.Writer, s.fs.Usage())
}

func showFiles(c *cli.Context, s *session) error {
	rows := fileRows(s.fs)
	if c.Bool("json") {
		return renderJSON(c.App.Writer, rows)
	}
	return renderFiles(c.App.Writer, rows)
}

func listDirectory(c *cli.Context, s *session) error {
	names, err := s.fs.ListDirectory()
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return renderJSON(c.App.Writer, names)
	}
	fmt.Fprintf(c.App.Writer, "%s:\n", s.fs.Directory())
	for _, name := range names {
		fmt.Fprintf(c.App.Writer, "  %s\n", name)
	}
	return nil
}

func changeDirectory(c *cli.Context, s *session) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	if err := s.fs.SetDirectory(c.Args().First()); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, s.fs.Directory())
	return nil
}

func exportFiles(c *cli.Context, s *session) error {
	rows := fileRows(s.fs)
	output := c.String("output")
	if output == "" {
		return exportCSV(c.App.Writer, rows)
	}

	file, err := os.Create(output)
	if err != nil {
		return blocksim.ErrStorageIO.Wrap(err)
	}
	if err = exportCSV(file, rows); err != nil {
		file.Close()
		return blocksim.ErrStorageIO.Wrap(err)
	}
	if err = file.Close(); err != nil {
		return blocksim.ErrStorageIO.Wrap(err)
	}
	return nil
}

func formatDisk(c *cli.Context, s *session) error {
	policy, err := pool.ParsePolicy(c.String("policy"))
	if err != nil {
		return err
	}
	if err = s.fs.Format(c.Uint("blocks"), policy); err != nil {
		return err
	}
	return renderUsage(c.App.Writer, s.fs.Usage())
}

func checkConsistency(c *cli.Context, s *session) error {
	if err := s.fs.Verify(); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "OK")
	return nil
}
