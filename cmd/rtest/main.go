// rtest compiles every file under test in-process and compares the result
// against a golden .<file>.json stored next to it.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/xplshn/rcc/pkg/config"
	"github.com/xplshn/rcc/pkg/driver"
	"github.com/xplshn/rcc/pkg/util"
)

// Golden is what one input is expected to produce.
type Golden struct {
	Output      string `json:"output"`
	Diagnostics string `json:"diagnostics"`
	Failed      bool   `json:"failed"`
}

type FileTestResult struct {
	File     string        `json:"file"`
	Status   string        `json:"status"` // PASS, FAIL, SKIP, ERROR
	Message  string        `json:"message,omitempty"`
	Diff     string        `json:"diff,omitempty"`
	Expected *Golden       `json:"expected,omitempty"`
	Actual   *Golden       `json:"actual,omitempty"`
	Duration time.Duration `json:"duration"`
}

type TestSuiteResults map[string]*FileTestResult

var (
	generateGolden = flag.Bool("generate-golden", false, "Write golden .json files for every matched file instead of testing.")
	testFiles      = flag.String("test-files", "testdata/*.c testdata/*.ir", "Glob pattern(s) for files to test (space-separated).")
	skipFiles      = flag.String("skip-files", "", "Files to skip (space-separated).")
	compilerArgs   = flag.String("args", "", "Warning and feature flags for the compiler, e.g. \"-Wpedantic -Fno-extern\".")
	backend        = flag.String("backend", "x86", "Code generator to test (x86, qbe).")
	outputJSON     = flag.String("output", ".test_results.json", "Output file for the JSON test report.")
	jobs           = flag.Int("j", 4, "Number of parallel test jobs.")
	verbose        = flag.Bool("v", false, "Enable verbose logging.")
	jsonDir        = flag.String("dir", "", "Directory to store/read golden JSON files (defaults to source file dir).")
)

const (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cCyan   = "\x1b[96m"
	cBold   = "\x1b[1m"
	cNone   = "\x1b[0m"
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	if *jobs < 1 {
		*jobs = 1
	}

	files, err := expandGlobPatterns(*testFiles)
	if err != nil {
		log.Fatalf("%s[ERROR]%s Invalid glob pattern(s): %v\n", cRed, cNone, err)
	}
	if len(files) == 0 {
		log.Println("No test files found matching the pattern(s).")
		return
	}

	if *generateGolden {
		handleGenerateGolden(files)
		return
	}
	handleRunTestSuite(files)
}

func getJSONPath(sourceFile string) string {
	jsonFileName := "." + filepath.Base(sourceFile) + ".json"
	if *jsonDir != "" {
		return filepath.Join(*jsonDir, jsonFileName)
	}
	return filepath.Join(filepath.Dir(sourceFile), jsonFileName)
}

// hashFile computes the xxhash of a file's content
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum64()), nil
}

// compile runs the pipeline on one file with a fresh configuration, so
// workers share nothing.
func compile(file string) (*Golden, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	cfg := config.NewConfig()
	if err := cfg.ProcessFlagString(*compilerArgs); err != nil {
		return nil, err
	}
	if err := cfg.SetTarget("linux", "amd64", *backend, ""); err != nil {
		return nil, err
	}

	var out, diag bytes.Buffer
	rep := util.NewReporter(&diag, cfg)
	session, err := driver.NewSession(cfg, rep, &out, driver.Options{DumpAST: true})
	if err != nil {
		return nil, err
	}
	// The file is registered under its base name so goldens do not depend
	// on where the tree is checked out.
	err = session.CompileFile(filepath.Base(file), content)
	if err != nil && err != driver.ErrFailed {
		return nil, err
	}
	return &Golden{Output: out.String(), Diagnostics: diag.String(), Failed: err != nil}, nil
}

func handleGenerateGolden(files []string) {
	for _, file := range files {
		result, err := compile(file)
		if err != nil {
			log.Fatalf("%s[ERROR]%s Could not generate golden file for %s: %v\n", cRed, cNone, file, err)
		}
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("%s[ERROR]%s Failed to marshal golden data to JSON: %v\n", cRed, cNone, err)
		}

		goldenFileName := getJSONPath(file)
		if *jsonDir != "" {
			if err := os.MkdirAll(*jsonDir, 0755); err != nil {
				log.Fatalf("%s[ERROR]%s Failed to create directory %s: %v\n", cRed, cNone, *jsonDir, err)
			}
		}
		if err := os.WriteFile(goldenFileName, append(jsonData, '\n'), 0644); err != nil {
			log.Fatalf("%s[ERROR]%s Failed to write golden file %s: %v\n", cRed, cNone, goldenFileName, err)
		}
		log.Printf("%s[SUCCESS]%s Golden file created at %s\n", cGreen, cNone, goldenFileName)
	}
}

func handleRunTestSuite(files []string) {
	skipList := make(map[string]bool)
	for _, f := range strings.Fields(*skipFiles) {
		skipList[f] = true
	}

	tasks := make(chan string, len(files))
	resultsChan := make(chan *FileTestResult, len(files))
	var wg sync.WaitGroup

	for i := 0; i < *jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range tasks {
				resultsChan <- testFile(file)
			}
		}()
	}

	// Feed the tasks channel, skipping files with identical content
	seenHashes := make(map[string]string)
	for _, file := range files {
		if skipList[file] || skipList[filepath.Base(file)] {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: "Explicitly skipped"}
			continue
		}
		fileHash, err := hashFile(file)
		if err != nil {
			resultsChan <- &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to read file for hashing: %v", err)}
			continue
		}
		if originalFile, seen := seenHashes[fileHash]; seen {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: fmt.Sprintf("Content is identical to %s", originalFile)}
			continue
		}
		seenHashes[fileHash] = file
		tasks <- file
	}
	close(tasks)

	wg.Wait()
	close(resultsChan)

	var allResults []*FileTestResult
	for result := range resultsChan {
		allResults = append(allResults, result)
	}
	sort.Slice(allResults, func(i, j int) bool {
		return allResults[i].File < allResults[j].File
	})

	printSummary(allResults)
	resultsMap := writeJSONReport(allResults)
	if hasFailures(resultsMap) {
		os.Exit(1)
	}
}

func testFile(file string) *FileTestResult {
	goldenFile := getJSONPath(file)
	goldenData, err := os.ReadFile(goldenFile)
	if os.IsNotExist(err) {
		return &FileTestResult{File: file, Status: "SKIP", Message: "Cannot test without a corresponding .json golden file"}
	}
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Could not read golden file %s: %v", goldenFile, err)}
	}
	var expected Golden
	if err := json.Unmarshal(goldenData, &expected); err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Could not parse golden file %s: %v", goldenFile, err)}
	}

	start := time.Now()
	actual, err := compile(file)
	duration := time.Since(start)
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: err.Error(), Expected: &expected, Duration: duration}
	}

	if diff := cmp.Diff(&expected, actual); diff != "" {
		return &FileTestResult{
			File: file, Status: "FAIL", Message: "Output does not match golden file",
			Diff: diff, Expected: &expected, Actual: actual, Duration: duration,
		}
	}
	return &FileTestResult{File: file, Status: "PASS", Message: "Output matches golden file", Expected: &expected, Actual: actual, Duration: duration}
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%6dµs", d.Microseconds())
	}
	return fmt.Sprintf("%6dms", d.Milliseconds())
}

func printSummary(results []*FileTestResult) {
	var passed, failed, skipped, errored int
	var total time.Duration

	for _, result := range results {
		fmt.Println("----------------------------------------------------------------------")
		fmt.Printf("Testing %s%s%s...\n", cCyan, result.File, cNone)

		switch result.Status {
		case "PASS":
			passed++
			fmt.Printf("  [%sPASS%s] %s\n", cGreen, cNone, result.Message)
		case "FAIL":
			failed++
			fmt.Printf("  [%sFAIL%s] %s\n", cRed, cNone, result.Message)
			fmt.Println(formatDiff(result.Diff))
		case "SKIP":
			skipped++
			fmt.Printf("  [%sSKIP%s] %s\n", cYellow, cNone, result.Message)
		case "ERROR":
			errored++
			fmt.Printf("  [%sERROR%s] %s\n", cRed, cNone, result.Message)
		}
		if *verbose && result.Duration > 0 {
			fmt.Printf("  compile: %s\n", formatDuration(result.Duration))
		}
		total += result.Duration
	}

	fmt.Println("----------------------------------------------------------------------")
	fmt.Printf("%sTest Summary:%s %s%d Passed%s, %s%d Failed%s, %s%d Skipped%s, %s%d Errored%s, %d Total\n",
		cBold, cNone, cGreen, passed, cNone, cRed, failed, cNone, cYellow, skipped, cNone, cRed, errored, cNone, len(results))
	if *verbose {
		fmt.Printf("Total compile time: %s\n", formatDuration(total))
	}
}

func formatDiff(diff string) string {
	if diff == "" {
		return ""
	}
	var builder strings.Builder
	builder.WriteString("    --- Diff ---\n")
	for _, line := range strings.Split(diff, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if strings.HasPrefix(trimmedLine, "-") {
			builder.WriteString(cRed)
		} else if strings.HasPrefix(trimmedLine, "+") {
			builder.WriteString(cGreen)
		}
		builder.WriteString("    " + line)
		builder.WriteString(cNone)
		builder.WriteString("\n")
	}
	return builder.String()
}

func writeJSONReport(results []*FileTestResult) TestSuiteResults {
	resultsMap := make(TestSuiteResults, len(results))
	for _, r := range results {
		resultsMap[r.File] = r
	}

	jsonData, err := json.MarshalIndent(resultsMap, "", "  ")
	if err != nil {
		log.Printf("%s[ERROR]%s Failed to marshal results to JSON: %v\n", cRed, cNone, err)
		return resultsMap
	}

	outputFile := *outputJSON
	if *jsonDir != "" {
		if err := os.MkdirAll(*jsonDir, 0755); err != nil {
			log.Printf("%s[ERROR]%s Failed to create dir %s: %v\n", cRed, cNone, *jsonDir, err)
		}
		outputFile = filepath.Join(*jsonDir, *outputJSON)
	}

	if err := os.WriteFile(outputFile, jsonData, 0644); err != nil {
		log.Printf("%s[ERROR]%s Failed to write JSON report to %s: %v\n", cRed, cNone, outputFile, err)
	} else {
		fmt.Printf("Full test report saved to %s\n", outputFile)
	}
	return resultsMap
}

func hasFailures(results TestSuiteResults) bool {
	for _, result := range results {
		if result.Status == "FAIL" || result.Status == "ERROR" {
			return true
		}
	}
	return false
}

func expandGlobPatterns(patterns string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]bool)
	for _, pattern := range strings.Fields(patterns) {
		files, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", pattern, err)
		}
		for _, file := range files {
			if seen[file] {
				continue
			}
			if info, err := os.Stat(file); err == nil && info.Mode().IsRegular() {
				allFiles = append(allFiles, file)
				seen[file] = true
			}
		}
	}
	return allFiles, nil
}
