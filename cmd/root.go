package cmd

import (
	"fmt"
	u "net/url"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/mveld/parget/internal/output"
	"github.com/mveld/parget/internal/scheduler"
	"github.com/mveld/parget/internal/utils"
)

var (
	outputPath    string
	connections   int
	workers       int
	timeout       time.Duration
	kaTimeout     time.Duration
	userAgent     string
	proxyURL      string
	proxyUsername string
	proxyPassword string
	debug         bool
	urlListFile   string
	cleanOutput   bool
	headers       []string
)

var PargetVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "parget",
	Short:   "parget is a parallel ranged download manager",
	Version: PargetVersion,
	Args:    cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(debug)
		if cleanOutput {
			if err := utils.CleanFunction(outputPath); err != nil {
				output.PrintError("Error cleaning up part files")
				os.Exit(1)
			}
			output.PrintSuccess("Part files cleaned up")
			return
		}
		if len(args) == 0 && urlListFile == "" {
			output.PrintError("No URL or URL list provided")
			os.Exit(1)
		}
		if urlListFile != "" && len(args) > 0 {
			output.PrintError("Cannot specify url argument and --urllist together, choose one")
			os.Exit(1)
		}
		if userAgent == "randomize" {
			userAgent = utils.GetRandomUserAgent()
		}
		// Check if proxy URL contains auth
		parsedProxy, err := u.Parse(proxyURL)
		if err == nil && parsedProxy.User != nil && proxyUsername == "" {
			proxyUsername = parsedProxy.User.Username()
			if password, set := parsedProxy.User.Password(); set {
				proxyPassword = password
			}
			parsedProxy.User = nil
			proxyURL = parsedProxy.String()
		}
		httpClientConfig := utils.HTTPClientConfig{
			Timeout:       timeout,
			KATimeout:     kaTimeout,
			ProxyURL:      proxyURL,
			ProxyUsername: proxyUsername,
			ProxyPassword: proxyPassword,
			UserAgent:     userAgent,
			Headers:       utils.ParseHeaderArgs(headers),
		}

		var entries []utils.BatchEntry
		if len(args) > 0 {
			url := args[0]
			if _, err := u.Parse(url); err != nil {
				output.PrintError("Invalid URL format")
				os.Exit(1)
			}
			entries = []utils.BatchEntry{{URL: url, OutputPath: outputPath, Type: utils.DetermineDownloadType(url)}}
		} else {
			entries, err = utils.ReadDownloadList(urlListFile)
			if err != nil {
				output.PrintError("Failed to read URL list file")
				os.Exit(1)
			}
		}

		jobs := make([]utils.Job, 0, len(entries))
		for _, entry := range entries {
			jobs = append(jobs, utils.Job{
				JobType:          entry.Type,
				URL:              entry.URL,
				OutputPath:       entry.OutputPath,
				Connections:      connections,
				HTTPClientConfig: httpClientConfig,
				Metadata:         make(map[string]any),
			})
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if err := scheduler.Run(ctx, jobs, workers); err != nil {
			fmt.Println()
			output.PrintError("Encountered failed operation(s)")
			os.Exit(1)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (parget infers file name if not provided)")
	rootCmd.Flags().StringVarP(&urlListFile, "urllist", "l", "", "Path to YAML file containing URLs and output paths")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 1, "Number of links to download in parallel")
	rootCmd.Flags().IntVarP(&connections, "connections", "c", utils.DefaultConnections, "Number of connections per download (above 5 enables high-thread-mode)")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 3*time.Minute, "Connection timeout (eg. 5s, 10m)")
	rootCmd.Flags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.Flags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent ('randomize' picks a browser UA)")
	rootCmd.Flags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.Flags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.Flags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.Flags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")

	// flags without shorthand
	rootCmd.Flags().BoolVar(&cleanOutput, "clean", false, "Clean up part files for provided output path")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
}
