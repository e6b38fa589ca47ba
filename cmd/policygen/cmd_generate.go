package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sant0-9/policygen/internal/catalog"
	"github.com/sant0-9/policygen/internal/contract"
	"github.com/sant0-9/policygen/internal/i18n"
	"github.com/sant0-9/policygen/internal/wizard"
	"github.com/sant0-9/policygen/internal/writer"
)

var (
	answersPath  string
	outPath      string
	withSummary  bool
	templateID   string
	forceWrite   bool
	skipFormRule bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a policy from an answers file",
	Long: `Runs the wizard non-interactively: the answers file is submitted as the
questionnaire, the policy is generated and, with --summary, summarized.

The answers file is YAML with the questionnaire fields:

  companyName: Acme Inc
  websiteURL: https://acme.com
  dataCollectionPractices: ...
  dataUsagePractices: ...
  dataSharingPractices: ...
  dataSecurityMeasures: ...
  userRights: ...
  contactInformation: privacy@acme.com
  effectiveDate: January 1, 2025

With --template, fields left out of the file are taken from that template.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&answersPath, "answers", "a", "", "questionnaire answers (YAML)")
	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "write the policy to this file or directory instead of stdout")
	generateCmd.Flags().BoolVar(&withSummary, "summary", false, "also print a plain-language summary")
	generateCmd.Flags().StringVarP(&templateID, "template", "t", "", "template whose defaults fill missing answers")
	generateCmd.Flags().BoolVar(&forceWrite, "force", false, "overwrite --out if it exists")
	generateCmd.Flags().BoolVar(&skipFormRule, "no-checks", false, "skip the questionnaire length and URL checks")
	_ = generateCmd.MarkFlagRequired("answers")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	msgs := i18n.For(cfg.Language)

	req, err := readAnswers(answersPath)
	if err != nil {
		return err
	}

	selected := "custom"
	if templateID != "" {
		cat, err := catalog.Load(cfg.Language, catalog.DefaultDir())
		if cat == nil {
			return err
		}
		t := cat.Get(templateID)
		if t == nil {
			return fmt.Errorf("unknown template %q", templateID)
		}
		req = withDefaults(req, t.Prefill(time.Now(), msgs.DateLayout()))
		selected = t.ID
	}

	if !skipFormRule {
		if errs := wizard.CheckForm(req, msgs); len(errs) > 0 {
			var b strings.Builder
			for _, e := range errs {
				fmt.Fprintf(&b, "\n  %s: %s", e.Field, e.Message)
			}
			return fmt.Errorf("answers are incomplete:%s", b.String())
		}
	}

	backend, err := newBackend(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	st := wizard.New(msgs)
	if err := st.Select(selected); err != nil {
		return err
	}
	runner := &wizard.Runner{Actions: backend}
	if withSummary {
		err = runner.Run(cmd.Context(), st, req)
	} else {
		err = generateOnly(cmd, runner, st, req)
	}
	if err != nil {
		return err
	}

	if st.Policy == nil {
		desc := msgs.FailureDescription
		if st.Notice != nil {
			desc = st.Notice.Description
		}
		return errors.New(desc)
	}

	if err := emit(cmd, *st.Policy); err != nil {
		return err
	}
	if withSummary && st.Summary != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "\n--- Summary ---\n%s\n", *st.Summary)
	}
	return nil
}

// generateOnly runs the first step of the wizard and stops; the summary is
// never requested.
func generateOnly(cmd *cobra.Command, runner *wizard.Runner, st *wizard.State, req contract.GenerationRequest) error {
	run, err := st.Submit(req)
	if err != nil {
		return err
	}
	st.PolicyArrived(run, runner.Generate(cmd.Context(), run))
	return nil
}

func emit(cmd *cobra.Command, policy string) error {
	if outPath == "" {
		fmt.Fprintln(cmd.OutOrStdout(), policy)
		return nil
	}
	target := outPath
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		target = filepath.Join(target, i18n.For(cfg.Language).FileName)
	}

	if forceWrite {
		if err := writer.Overwrite(target, policy); err != nil {
			return err
		}
		log.Info("policy written", zap.String("path", target))
		return nil
	}

	path, err := writer.Save(target, policy)
	if err != nil {
		return err
	}
	log.Info("policy written", zap.String("path", path))
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved to %s\n", path)
	return nil
}

func readAnswers(path string) (contract.GenerationRequest, error) {
	var req contract.GenerationRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}
	if err := yaml.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parse %s: %w", path, err)
	}
	return req, nil
}

// withDefaults fills every blank answer in req from defaults.
func withDefaults(req, defaults contract.GenerationRequest) contract.GenerationRequest {
	pick := func(v, d string) string {
		if strings.TrimSpace(v) == "" {
			return d
		}
		return v
	}
	req.CompanyName = pick(req.CompanyName, defaults.CompanyName)
	req.WebsiteURL = pick(req.WebsiteURL, defaults.WebsiteURL)
	req.DataCollectionPractices = pick(req.DataCollectionPractices, defaults.DataCollectionPractices)
	req.DataUsagePractices = pick(req.DataUsagePractices, defaults.DataUsagePractices)
	req.DataSharingPractices = pick(req.DataSharingPractices, defaults.DataSharingPractices)
	req.DataSecurityMeasures = pick(req.DataSecurityMeasures, defaults.DataSecurityMeasures)
	req.UserRights = pick(req.UserRights, defaults.UserRights)
	req.ContactInformation = pick(req.ContactInformation, defaults.ContactInformation)
	req.EffectiveDate = pick(req.EffectiveDate, defaults.EffectiveDate)
	return req
}
