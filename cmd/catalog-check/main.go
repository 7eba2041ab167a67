package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/noah-isme/academic-record-api/internal/catalog"
	"github.com/noah-isme/academic-record-api/pkg/config"
)

func main() {
	defaultFile := "./data/curricula.csv"
	if cfg, err := config.Load(); err == nil && cfg.Catalog.CurriculaFile != "" {
		defaultFile = cfg.Catalog.CurriculaFile
	}

	file := flag.String("file", defaultFile, "curricula index file")
	curriculum := flag.Int("curriculum", 0, "only list courses of this curriculum id")
	strict := flag.Bool("strict", false, "exit with status 1 when prerequisites do not resolve")
	flag.Parse()

	courses := catalog.New()
	if err := catalog.LoadFiles(courses, *file); err != nil {
		color.Red("Failed to load catalog: %v", err)
		os.Exit(1)
	}

	color.Cyan("\n=== Curricula (%s) ===", *file)
	curricula := tablewriter.NewWriter(os.Stdout)
	curricula.SetHeader([]string{"ID", "Name", "Courses"})
	counts := make(map[int]int)
	for _, course := range courses.Courses() {
		counts[course.CurriculumID]++
	}
	for _, c := range courses.Curricula() {
		curricula.Append([]string{strconv.Itoa(c.ID), c.Name, strconv.Itoa(counts[c.ID])})
	}
	curricula.Render()

	color.Yellow("\nCourses")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Curriculum", "Code", "Name", "Prerequisites"})
	for _, course := range courses.Courses() {
		if *curriculum != 0 && course.CurriculumID != *curriculum {
			continue
		}
		table.Append([]string{
			strconv.Itoa(course.CurriculumID),
			course.Code,
			course.Name,
			strings.Join(course.Prerequisites, catalog.PrerequisiteSeparator),
		})
	}
	table.Render()

	dangling := courses.DanglingPrerequisites()
	if len(dangling) == 0 {
		color.Green("\nAll prerequisites resolve within their curriculum.")
		return
	}

	color.Red("\n%d prerequisite references do not resolve", len(dangling))
	issues := tablewriter.NewWriter(os.Stdout)
	issues.SetHeader([]string{"Curriculum", "Course", "Missing prerequisite"})
	for _, d := range dangling {
		issues.Append([]string{strconv.Itoa(d.CurriculumID), d.CourseCode, d.Missing})
	}
	issues.Render()

	if *strict {
		fmt.Fprintln(os.Stderr, "catalog check failed")
		os.Exit(1)
	}
}
