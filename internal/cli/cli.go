// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mtelnov/code2llm/internal/config"
	"github.com/mtelnov/code2llm/internal/gitignore"
	"github.com/mtelnov/code2llm/internal/output"
	"github.com/mtelnov/code2llm/internal/services/clipboard"
	"github.com/mtelnov/code2llm/internal/tokenizer"
	"github.com/mtelnov/code2llm/internal/types"
	"github.com/mtelnov/code2llm/internal/utils"
	"github.com/mtelnov/code2llm/internal/workspace"
)

const (
	exclusionFlagName      = "exclude"
	exclusionFlagShorthand = "e"
	rootFlagName           = "root"
	noGitignoreFlagName    = "no-gitignore"
	followSymlinksFlagName = "follow-symlinks"
	noSystemPromptFlagName = "no-system-prompt"
	formatFlagName         = "format"
	copyFlagName           = "copy"
	tokensFlagName         = "tokens"
	modelFlagName          = "model"
	configFlagName         = "config"
	versionFlagName        = "version"
	versionTemplate        = "code2llm version: %s\n"
	defaultPath            = "."
	defaultTokenizerModel  = "gpt-4o"

	rootUse              = "code2llm"
	rootShortDescription = "code2llm command line interface"
	rootLongDescription  = `code2llm prepares project source for language-model prompts.
It selects files honoring .gitignore rules and user exclusions, renders the
selection as a directory tree, and concatenates file contents into one bundle.`

	bundleUse              = "bundle [paths...]"
	treeUse                = "tree [paths...]"
	bundleAlias            = "b"
	treeAlias              = "t"
	bundleShortDescription = "render the prompt bundle (" + bundleAlias + ")"
	treeShortDescription   = "display the selection tree (" + treeAlias + ")"
	bundleLongDescription  = `Bundle the selected files into a single prompt document.
Paths may be files or directories; the current directory is used when none are given.`
	bundleUsageExample = `  # Bundle the current project, excluding generated code
  code2llm bundle -e "*.pb.go" .

  # Copy a bundle with token counts to the clipboard
  code2llm bundle --tokens --copy ./cmd ./internal`
	treeLongDescription = `List the files that would be bundled, rendered as a tree.`
	treeUsageExample    = `  # Show the selection for the current project
  code2llm tree

  # Inspect the effect of an exclusion
  code2llm tree -e "dist/"`

	versionFlagDescription   = "display application version"
	exclusionFlagDescription = "exclusion pattern, gitignore syntax (repeatable)"
	rootFlagDescription      = "project root override"
	noGitignoreFlagDesc      = "do not read the root .gitignore"
	followSymlinksFlagDesc   = "descend into directory symlinks"
	noSystemPromptFlagDesc   = "omit the system prompt header"
	formatFlagDescription    = "output format (raw or json)"
	copyFlagDescription      = "copy the output to the clipboard"
	tokensFlagDescription    = "include token counts"
	modelFlagDescription     = "tokenizer model for token counting"
	configFlagDescription    = "configuration file path"

	invalidFormatMessage        = "invalid format value '%s'"
	warningSkipFormat           = "Warning: skipping %s\n"
	warningFailureFormat        = "Warning: %v\n"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	errorNoFilesSelected        = "no files selected"
	tokenSummaryFormat          = "Token summary: %d files, %d tokens (model %s)\n"
)

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatJSON:
		return true
	default:
		return false
	}
}

// Execute runs the code2llm application.
func Execute() error {
	rootCommand := createRootCommand()
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var showVersion bool
	var configurationFilePath string

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&configurationFilePath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		createBundleCommand(&configurationFilePath),
		createTreeCommand(&configurationFilePath),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// pathOptions stores configuration for selection-related flags.
type pathOptions struct {
	exclusionPatterns []string
	rootOverride      string
	disableGitignore  bool
	followSymlinks    bool
}

// addPathFlags registers selection-related flags on the command.
func addPathFlags(command *cobra.Command, options *pathOptions) {
	command.Flags().StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagShorthand, nil, exclusionFlagDescription)
	command.Flags().StringVar(&options.rootOverride, rootFlagName, "", rootFlagDescription)
	command.Flags().BoolVar(&options.disableGitignore, noGitignoreFlagName, false, noGitignoreFlagDesc)
	command.Flags().BoolVar(&options.followSymlinks, followSymlinksFlagName, false, followSymlinksFlagDesc)
}

// createBundleCommand returns the bundle subcommand.
func createBundleCommand(configurationFilePath *string) *cobra.Command {
	var pathConfiguration pathOptions
	var outputFormat string = types.FormatRaw
	var disableSystemPrompt bool
	var copyToClipboard bool
	var tokensEnabled bool
	var tokenizerModel string = defaultTokenizerModel

	bundleCommand := &cobra.Command{
		Use:     bundleUse,
		Aliases: []string{bundleAlias},
		Short:   bundleShortDescription,
		Long:    bundleLongDescription,
		Example: bundleUsageExample,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) == 0 {
				arguments = []string{defaultPath}
			}
			outputFormatLower := strings.ToLower(outputFormat)
			if !isSupportedFormat(outputFormatLower) {
				return fmt.Errorf(invalidFormatMessage, outputFormatLower)
			}
			return runBundleOrTreeCommand(types.CommandBundle, arguments, runOptions{
				pathConfiguration:   pathConfiguration,
				format:              outputFormatLower,
				disableSystemPrompt: disableSystemPrompt,
				copyToClipboard:     copyToClipboard,
				tokensEnabled:       tokensEnabled,
				tokenizerModel:      tokenizerModel,
				configurationPath:   *configurationFilePath,
			})
		},
	}

	addPathFlags(bundleCommand, &pathConfiguration)
	bundleCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	bundleCommand.Flags().BoolVar(&disableSystemPrompt, noSystemPromptFlagName, false, noSystemPromptFlagDesc)
	bundleCommand.Flags().BoolVar(&copyToClipboard, copyFlagName, false, copyFlagDescription)
	bundleCommand.Flags().BoolVar(&tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	bundleCommand.Flags().StringVar(&tokenizerModel, modelFlagName, defaultTokenizerModel, modelFlagDescription)
	return bundleCommand
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(configurationFilePath *string) *cobra.Command {
	var pathConfiguration pathOptions
	var outputFormat string = types.FormatRaw

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) == 0 {
				arguments = []string{defaultPath}
			}
			outputFormatLower := strings.ToLower(outputFormat)
			if !isSupportedFormat(outputFormatLower) {
				return fmt.Errorf(invalidFormatMessage, outputFormatLower)
			}
			return runBundleOrTreeCommand(types.CommandTree, arguments, runOptions{
				pathConfiguration: pathConfiguration,
				format:            outputFormatLower,
				configurationPath: *configurationFilePath,
			})
		},
	}

	addPathFlags(treeCommand, &pathConfiguration)
	treeCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	return treeCommand
}

// runOptions aggregates the effective configuration for one invocation.
type runOptions struct {
	pathConfiguration    pathOptions
	format               string
	disableSystemPrompt  bool
	copyToClipboard      bool
	tokensEnabled        bool
	tokenizerModel       string
	configurationPath    string
	systemPromptOverride *string
}

// runBundleOrTreeCommand executes the bundle or tree command for the given paths.
func runBundleOrTreeCommand(commandName string, inputPaths []string, options runOptions) error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}

	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: options.configurationPath,
	})
	if configurationError != nil {
		return configurationError
	}
	options = applyConfigurationDefaults(options, applicationConfiguration)

	rootPath, rootError := resolveRootPath(inputPaths, options.pathConfiguration.rootOverride, workingDirectory)
	if rootError != nil {
		return rootError
	}

	var ignoreLines []string
	if !options.pathConfiguration.disableGitignore {
		loadedLines, loadError := config.LoadIgnoreFileLines(filepath.Join(rootPath, utils.GitIgnoreFileName))
		if loadError != nil {
			return fmt.Errorf("loading %s from %s: %w", utils.GitIgnoreFileName, rootPath, loadError)
		}
		ignoreLines = loadedLines
	}

	exclusionPatterns := utils.DeduplicatePatterns(options.pathConfiguration.exclusionPatterns)
	patternSet, compileError := gitignore.CompilePatternSet(ignoreLines, exclusionPatterns)
	if compileError != nil {
		return compileError
	}

	selectionResult := workspace.Collect(inputPaths, rootPath, patternSet, workspace.CollectOptions{
		FollowSymlinks: options.pathConfiguration.followSymlinks,
		LooksBinary:    utils.IsFileBinary,
	})
	for _, failure := range selectionResult.Failures {
		fmt.Fprintf(os.Stderr, warningFailureFormat, failure)
	}

	treeText := output.RenderSelectionTree(selectionResult.Files)

	var renderingError error
	switch commandName {
	case types.CommandBundle:
		renderingError = renderBundle(selectionResult, treeText, options)
	case types.CommandTree:
		renderingError = renderTree(selectionResult, treeText, options)
	default:
		renderingError = fmt.Errorf("internal error: unhandled command '%s'", commandName)
	}
	if renderingError != nil {
		return renderingError
	}

	if len(selectionResult.Files) == 0 && len(selectionResult.Failures) > 0 {
		return selectionResult.Failures[0]
	}
	return nil
}

// renderBundle produces the bundle in the requested format, counting tokens
// and copying to the clipboard when asked.
func renderBundle(selectionResult *types.SelectionResult, treeText string, options runOptions) error {
	var tokenCounts []int
	var totalTokens int
	var resolvedModel string
	if options.tokensEnabled {
		tokenCounter, modelName, counterError := tokenizer.NewCounter(tokenizer.Config{Model: options.tokenizerModel})
		if counterError != nil {
			return counterError
		}
		resolvedModel = modelName
		counts, total, countError := tokenizer.CountFiles(tokenCounter, selectionResult.RootPath, selectionResult.Files)
		if countError != nil {
			return countError
		}
		tokenCounts = counts
		totalTokens = total
	}

	var renderedOutput string
	if options.format == types.FormatJSON {
		document := output.BuildBundleDocument(selectionResult, treeText, tokenCounts, resolvedModel)
		renderedJSON, renderError := output.RenderBundleJSON(document)
		if renderError != nil {
			return renderError
		}
		renderedOutput = renderedJSON
	} else {
		systemPrompt := resolveSystemPrompt(options)
		bundleText, assemblySkips := output.AssembleBundle(selectionResult, treeText, output.BundleOptions{
			SystemPrompt: systemPrompt,
			Warn:         func(message string) { fmt.Fprintf(os.Stderr, warningSkipFormat, message) },
		})
		selectionResult.Skipped = append(selectionResult.Skipped, assemblySkips...)
		renderedOutput = bundleText
		if options.tokensEnabled {
			fmt.Fprintf(os.Stderr, tokenSummaryFormat, len(selectionResult.Files), totalTokens, resolvedModel)
		}
	}

	fmt.Println(renderedOutput)

	if options.copyToClipboard {
		clipboardService := clipboard.NewService()
		if copyError := clipboardService.Copy(renderedOutput); copyError != nil {
			return fmt.Errorf("copying output to clipboard: %w", copyError)
		}
	}
	return nil
}

// renderTree prints the selection tree, or the structured document for json.
func renderTree(selectionResult *types.SelectionResult, treeText string, options runOptions) error {
	if options.format == types.FormatJSON {
		document := output.BuildBundleDocument(selectionResult, treeText, nil, "")
		renderedJSON, renderError := output.RenderBundleJSON(document)
		if renderError != nil {
			return renderError
		}
		fmt.Println(renderedJSON)
		return nil
	}
	fmt.Println(treeText)
	return nil
}

// resolveRootPath determines the project root: an explicit override wins,
// otherwise the repository root located from the first input path.
func resolveRootPath(inputPaths []string, rootOverride string, workingDirectory string) (string, error) {
	if rootOverride != "" {
		absoluteOverride, absoluteError := filepath.Abs(rootOverride)
		if absoluteError != nil {
			return "", fmt.Errorf("resolving root override %s: %w", rootOverride, absoluteError)
		}
		return filepath.Clean(absoluteOverride), nil
	}
	startPath := workingDirectory
	if len(inputPaths) > 0 {
		startPath = inputPaths[0]
	}
	return workspace.FindRepositoryRoot(startPath)
}

// applyConfigurationDefaults folds file-based configuration into flag values,
// with flags taking precedence where both are set.
func applyConfigurationDefaults(options runOptions, applicationConfiguration config.ApplicationConfiguration) runOptions {
	bundleConfiguration := applicationConfiguration.Bundle
	options.pathConfiguration.exclusionPatterns = append(bundleConfiguration.Exclude, options.pathConfiguration.exclusionPatterns...)
	if options.format == types.FormatRaw && bundleConfiguration.Format != "" && isSupportedFormat(strings.ToLower(bundleConfiguration.Format)) {
		options.format = strings.ToLower(bundleConfiguration.Format)
	}
	if !options.tokensEnabled && bundleConfiguration.Tokens != nil {
		options.tokensEnabled = *bundleConfiguration.Tokens
	}
	if options.tokenizerModel == defaultTokenizerModel && bundleConfiguration.Model != "" {
		options.tokenizerModel = bundleConfiguration.Model
	}
	if !options.copyToClipboard && bundleConfiguration.Clipboard != nil {
		options.copyToClipboard = *bundleConfiguration.Clipboard
	}
	if !options.pathConfiguration.followSymlinks && bundleConfiguration.FollowSymlinks != nil {
		options.pathConfiguration.followSymlinks = *bundleConfiguration.FollowSymlinks
	}
	if bundleConfiguration.SystemPrompt != nil {
		options.systemPromptOverride = bundleConfiguration.SystemPrompt
	}
	return options
}

// resolveSystemPrompt picks the prompt header: disabled, configured, or default.
func resolveSystemPrompt(options runOptions) string {
	if options.disableSystemPrompt {
		return ""
	}
	if options.systemPromptOverride != nil {
		return *options.systemPromptOverride
	}
	return output.DefaultSystemPrompt
}
