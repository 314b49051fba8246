package cmd

import (
	"os"

	"github.com/orbistools/pkgforge/internal/config"
	"github.com/orbistools/pkgforge/internal/logger"
	"github.com/orbistools/pkgforge/internal/pkgfile"
	"github.com/spf13/cobra"
)

var (
	projectPath string
	outPath     string
	streamOut   bool
)

// buildCmd constructs a package from a project description.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a PKG file from a project description",
	RunE: func(cmd *cobra.Command, args []string) error {
		proj, err := config.LoadProject(projectPath)
		if err != nil {
			return err
		}
		builder, err := pkgfile.NewBuilder(proj)
		if err != nil {
			return err
		}

		logEvent := func(e pkgfile.Event) {
			switch ev := e.(type) {
			case pkgfile.Message:
				logger.LogInfo(string(ev), map[string]interface{}{"out": outPath})
			case pkgfile.Progress:
				logger.LogInfo("progress", map[string]interface{}{"percent": int(ev)})
			}
		}

		var pkg *pkgfile.Pkg
		if streamOut {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			pkg, err = builder.WriteTo(f, logEvent)
			if err != nil {
				return err
			}
		} else {
			pkg, err = builder.Write(outPath, logEvent)
			if err != nil {
				return err
			}
		}

		logger.LogInfo("package complete", map[string]interface{}{
			"out":     outPath,
			"size":    pkg.Header.PackageSize,
			"entries": len(pkg.Entries),
		})
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&projectPath, "project", "", "project description file (yaml)")
	buildCmd.Flags().StringVar(&outPath, "out", "", "output PKG path")
	buildCmd.Flags().BoolVar(&streamOut, "stream", false, "write through a stream instead of a memory-mapped file")
	buildCmd.MarkFlagRequired("project")
	buildCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(buildCmd)
}
