// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AleutianAI/ProfileSentry/pkg/logging"
	"github.com/AleutianAI/ProfileSentry/pkg/ux"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
)

const defaultServerURL = "http://localhost:12350"

var (
	rootCmd = &cobra.Command{
		Use:   "sentry",
		Short: "A CLI for the ProfileSentry fake-profile analyzer",
		Long: `Sentry submits social media handles to a running profile-analyzer
service and reports whether the account looks genuine or fake.`,
	}

	serverURL  string
	jsonOutput bool
	verbose    bool

	analyzeCmd = &cobra.Command{
		Use:   "analyze [username...]",
		Short: "Analyze one or more profiles through the full acquisition pipeline",
		Long: `Sends each handle to the analyzer, which acquires the profile data
(cache, authenticated API, scraping, public endpoints, or a synthetic
fallback) and scores it with the rule engine.`,
		Args: cobra.MinimumNArgs(1),
		Run:  runAnalyzeCommand,
	}

	predictFollowers int
	predictFollowing int
	predictPosts     int
	predictVerified  bool
	predictPrivate   bool
	predictHasPic    bool
	predictLanguage  string

	predictCmd = &cobra.Command{
		Use:   "predict [user_id]",
		Short: "Classify a profile from explicit attribute values",
		Long: `Bypasses acquisition and sends attribute values straight to the
trained classifier. Useful for what-if checks.`,
		Args: cobra.ExactArgs(1),
		Run:  runPredictCommand,
	}

	interactiveCmd = &cobra.Command{
		Use:   "interactive",
		Short: "Analyze profiles in an interactive prompt loop",
		Run:   runInteractiveCommand,
	}

	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Check that the analyzer service is reachable",
		Run:   runHealthCommand,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "",
		"Analyzer base URL (default: $SENTRY_SERVER, then ~/.profilesentry/config.yaml, then "+defaultServerURL+")")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false,
		"Log client activity to stderr")

	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw JSON response")
	predictCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw JSON response")
	predictCmd.Flags().IntVar(&predictFollowers, "followers", 0, "Follower count")
	predictCmd.Flags().IntVar(&predictFollowing, "following", 0, "Following count")
	predictCmd.Flags().IntVar(&predictPosts, "posts", 0, "Post count")
	predictCmd.Flags().BoolVar(&predictVerified, "verified", false, "Account has a verified badge")
	predictCmd.Flags().BoolVar(&predictPrivate, "private", false, "Account is private")
	predictCmd.Flags().BoolVar(&predictHasPic, "has-pic", true, "Account has a profile picture")
	predictCmd.Flags().StringVar(&predictLanguage, "lang", "en", "Profile language code")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(healthCmd)
}

// resolveServerURL picks the analyzer base URL: the --server flag wins,
// then $SENTRY_SERVER, then server_url from ~/.profilesentry/config.yaml,
// then the localhost default.
func resolveServerURL(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("SENTRY_SERVER"); env != "" {
		return env
	}
	if home, err := os.UserHomeDir(); err == nil {
		v := viper.New()
		v.SetConfigFile(filepath.Join(home, ".profilesentry", "config.yaml"))
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err == nil {
			if s := v.GetString("server_url"); s != "" {
				return s
			}
		}
	}
	return defaultServerURL
}

// newCLILogger builds the client logger. Logs always land in
// ~/.profilesentry/logs; stderr output is gated behind --verbose so it
// does not clutter the rendered verdicts.
func newCLILogger() *logging.Logger {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	return logging.New(logging.Config{
		Level:   level,
		LogDir:  "~/.profilesentry/logs",
		Service: "cli",
		Quiet:   !verbose,
	})
}

func newClient() (*AnalyzerClient, *logging.Logger) {
	logger := newCLILogger()
	return NewAnalyzerClient(resolveServerURL(serverURL), logger), logger
}

func renderResponse(username string, resp *datatypes.AnalysisResponse) {
	if jsonOutput {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			log.Fatalf("Error encoding response: %v", err)
		}
		fmt.Println(string(data))
		return
	}
	fmt.Println(ux.RenderVerdict(ux.VerdictReport{
		Username:          strings.TrimPrefix(username, "@"),
		Prediction:        resp.Prediction,
		Confidence:        resp.Confidence,
		RiskScore:         resp.RiskScore,
		Reasons:           resp.Reasons,
		FollowerCount:     resp.Features.FollowerCount,
		FollowingCount:    resp.Features.FollowingCount,
		PostCount:         resp.Features.PostCount,
		AcquisitionMethod: string(resp.AcquisitionMethod),
		Whitelisted:       resp.IsWhitelisted,
	}))
}

func analyzeOne(ctx context.Context, client *AnalyzerClient, username string) error {
	spinner := ux.NewSpinner(fmt.Sprintf("Analyzing @%s", strings.TrimPrefix(username, "@")))
	spinner.Start()
	resp, err := client.Analyze(ctx, username)
	spinner.Stop()
	if err != nil {
		return err
	}
	renderResponse(username, resp)
	return nil
}

func runAnalyzeCommand(cmd *cobra.Command, args []string) {
	client, logger := newClient()
	defer logger.Close()

	ctx := cmd.Context()
	failures := 0
	for _, username := range args {
		if err := analyzeOne(ctx, client, username); err != nil {
			failures++
			ux.Error(fmt.Sprintf("@%s: %v", strings.TrimPrefix(username, "@"), err))
			logger.Error("analyze failed", "username", username, "error", err)
		}
	}
	if failures > 0 {
		os.Exit(1)
	}
}

func runPredictCommand(cmd *cobra.Command, args []string) {
	client, logger := newClient()
	defer logger.Close()

	req := &datatypes.PredictRequest{
		UserID:         args[0],
		FollowerCount:  predictFollowers,
		FollowingCount: predictFollowing,
		PostCount:      predictPosts,
		HasProfilePic:  predictHasPic,
		IsPrivate:      predictPrivate,
		IsVerified:     predictVerified,
		Language:       predictLanguage,
	}
	resp, err := client.Predict(cmd.Context(), req)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	renderResponse(args[0], resp)
}

func runInteractiveCommand(cmd *cobra.Command, args []string) {
	client, logger := newClient()
	defer logger.Close()

	ctx := cmd.Context()
	if err := client.Health(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
	ux.Title("ProfileSentry")
	ux.Muted("Enter a handle to analyze. Leave it empty to quit.")

	for {
		var username string
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Instagram handle").
				Placeholder("@username").
				Value(&username),
		))
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return
			}
			log.Fatalf("Error reading input: %v", err)
		}

		username = strings.TrimSpace(username)
		if username == "" {
			return
		}

		if err := analyzeOne(ctx, client, username); err != nil {
			ux.Error(err.Error())
			logger.Error("analyze failed", "username", username, "error", err)
		}

		again := true
		confirm := huh.NewConfirm().
			Title("Analyze another profile?").
			Affirmative("Yes").
			Negative("No").
			Value(&again)
		if err := confirm.Run(); err != nil || !again {
			return
		}
	}
}

func runHealthCommand(cmd *cobra.Command, args []string) {
	client, logger := newClient()
	defer logger.Close()

	url := resolveServerURL(serverURL)
	if err := client.Health(cmd.Context()); err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
	ux.Success(fmt.Sprintf("analyzer at %s is healthy", url))
}
