package main

import "fmt"

func prompt() string {
	return `
	You are an expert resume writer who rewrites resumes so they read well to
recruiters and to applicant tracking systems for a specific job.

Your goal is to:
- Rewrite the provided resume for the provided job title and job description.
- Lead each bullet with a strong action verb and keep bullets to one or two lines.
- Surface the experience, skills and achievements that match the job description.
- Keep every fact from the original. Quantify results only where the original gives numbers.
- Keep the original section order (contact, summary, experience, education, skills, ...).

Rules:
Do not invent employers, titles, dates, degrees, certifications or skills.
Do not add commentary, explanations or notes for the user.
Return only the rewritten resume as plain text with "- " bullets.
Do not wrap the answer in markdown code fences.
	`
}

// modeGuidance narrows the rewrite toward the focus the user picked.
var modeGuidance = map[OptimizationMode]string{
	ModeFull:       "Improve keyword coverage, engagement and clarity together.",
	ModeSEO:        "Focus on keyword coverage: mirror the job description's terminology wherever the resume supports it.",
	ModeEngagement: "Focus on engagement: strong action verbs, achievement-first bullets, concise impact statements.",
	ModeClarity:    "Focus on clarity: short sentences, no filler, consistent tense and formatting.",
}

func optimizePrompt(input OptimizeInput) string {
	jobTitle := input.JobTitle
	if jobTitle == "" {
		jobTitle = "(not provided)"
	}
	return fmt.Sprintf(
		"Focus:\n%s\n\nJob Title:\n%s\n\nJob Description:\n%s\n\nResume:\n%s",
		modeGuidance[input.Mode],
		jobTitle,
		input.JobDescription,
		input.ResumeText,
	)
}
