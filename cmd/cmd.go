package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
	cfgPkg "github.com/monishmahesha2006/resume-relevance-system/pkg/config"
	"github.com/monishmahesha2006/resume-relevance-system/pkg/llm"
	"github.com/monishmahesha2006/resume-relevance-system/pkg/match"
	"github.com/monishmahesha2006/resume-relevance-system/pkg/store"
)

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("pairs"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func runSingle(ctx context.Context, flags Flags, cfg *cfgPkg.Config, engine *match.Engine, db *store.Store) error {
	resume, err := db.GetResume(ctx, flags.ResumeID)
	if err != nil {
		return fmt.Errorf("loading resume %q: %w", flags.ResumeID, err)
	}
	jd, err := db.GetJobDescription(ctx, flags.JDID)
	if err != nil {
		return fmt.Errorf("loading job description %q: %w", flags.JDID, err)
	}

	result, err := engine.Match(ctx, resume, jd)
	if err != nil {
		return err
	}

	if flags.Enhance || cfg.LLM.EnhanceFeedback {
		enhancer, err := llm.NewEnhancerWithConfig(llm.EnhancerConfig{
			Model:       cfg.LLM.ChatModel,
			BaseURL:     cfg.LLM.BaseURL,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		})
		if err != nil {
			return err
		}
		// Deterministic feedback stands when enhancement fails.
		if polished, err := enhancer.Enhance(ctx, result); err == nil {
			result.Feedback = polished
		} else {
			color.Yellow("feedback enhancement unavailable: %v", err)
		}
	}

	if err := db.UpsertResult(ctx, result); err != nil {
		return err
	}

	printResult(result)
	return nil
}

func runBatch(ctx context.Context, flags Flags, cfg *cfgPkg.Config, engine *match.Engine, db *store.Store, zlog *zap.Logger) error {
	var bar *progressbar.ProgressBar

	orch, err := match.NewOrchestrator(match.OrchestratorConfig{
		Workers:       cfg.Batch.Workers,
		SkipUnchanged: cfg.Batch.RematchPolicy == "skip-unchanged",
		OnProgress: func(done, total int) {
			if bar == nil {
				bar = getProgressBar(total, " Matching pairs")
			}
			bar.Set(done)
		},
	}, engine, db, db, zlog)
	if err != nil {
		return err
	}

	summary, err := orch.Run(ctx, nil, nil, flags.Force)
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	if err != nil {
		return err
	}

	color.Green("✓ %d pairs matched, %d skipped", len(summary.Results), summary.Skipped)
	if len(summary.Failures) > 0 {
		color.Red("✗ %d pairs failed:", len(summary.Failures))
		for _, f := range summary.Failures {
			color.Red("  (%s, %s): %s", f.Pair.ResumeID, f.Pair.JDID, f.Reason)
		}
	}
	return nil
}

func printResult(result *models.MatchResult) {
	verdictColor := color.New(color.FgRed)
	switch result.Verdict {
	case models.VerdictHigh:
		verdictColor = color.New(color.FgGreen)
	case models.VerdictMedium:
		verdictColor = color.New(color.FgYellow)
	}

	fmt.Printf("\n%s vs %s\n", result.ResumeID, result.JDID)
	verdictColor.Printf("  %s (%.0f%%)\n", result.Verdict, result.RelevanceScore*100)
	fmt.Printf("  hard match: %.2f  soft match: %.2f\n", result.HardMatchScore, result.SoftMatchScore)

	if len(result.Strengths) > 0 {
		color.Green("  Strengths:")
		for _, s := range result.Strengths {
			fmt.Printf("    + %s\n", s)
		}
	}
	if len(result.ImprovementAreas) > 0 {
		color.Yellow("  Improvement areas:")
		for _, a := range result.ImprovementAreas {
			fmt.Printf("    - %s\n", a)
		}
	}
	if len(result.MissingSkills) > 0 {
		fmt.Printf("  Missing skills: %s\n", strings.Join(result.MissingSkills, ", "))
	}
	fmt.Printf("  %s\n", result.Feedback)
}

func printTopResults(ctx context.Context, db *store.Store, limit int) error {
	results, err := db.ListResults(ctx, limit)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%-20s %-20s %5.1f%%  %s\n", r.ResumeID, r.JDID, r.RelevanceScore*100, r.Verdict)
	}
	return nil
}

func printResultsByVerdict(ctx context.Context, db *store.Store, verdict models.Verdict) error {
	results, err := db.ResultsByVerdict(ctx, verdict)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%-20s %-20s %5.1f%%\n", r.ResumeID, r.JDID, r.RelevanceScore*100)
	}
	return nil
}

func printSimilarResumes(ctx context.Context, db *store.Store, embedder *llm.Embedder, resumeID string) error {
	resume, err := db.GetResume(ctx, resumeID)
	if err != nil {
		return fmt.Errorf("loading resume %q: %w", resumeID, err)
	}

	embedding, err := embedder.Embed(ctx, resume.FullText())
	if err != nil {
		return err
	}

	matches, err := db.SimilarResumes(ctx, embedding, 6)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if m.ID == resumeID {
			continue
		}
		fmt.Printf("%-20s distance %.4f\n", m.ID, m.Distance)
	}
	return nil
}
