package mailer_test

import (
	"strings"
	"testing"

	"alcyxob/gym-portal/internal/mailer"
)

func TestRenderPlanEmail(t *testing.T) {
	tests := []struct {
		name        string
		in          mailer.PlanEmail
		contains    []string
		notContains []string
	}{
		{
			name: "markdown rendered",
			in: mailer.PlanEmail{
				MemberName:  "Ana",
				TrainerName: "Coach Bo",
				PlanType:    "diet",
				Content:     "# Week 1\n\n- **Breakfast**: oats",
			},
			contains:    []string{"<h1>Week 1</h1>", "<strong>Breakfast</strong>", "Hi Ana,", "Coach Bo has prepared your diet plan."},
			notContains: []string{"Download the attached"},
		},
		{
			name: "raw html escaped",
			in: mailer.PlanEmail{
				MemberName:  "Ana",
				TrainerName: "Coach Bo",
				PlanType:    "exercise",
				Content:     "<script>alert(1)</script>",
			},
			notContains: []string{"<script>alert(1)</script>"},
		},
		{
			name: "attachment link",
			in: mailer.PlanEmail{
				MemberName:    "Ana",
				TrainerName:   "Coach Bo",
				PlanType:      "both",
				Content:       "see attachment",
				AttachmentURL: "https://files.example.com/plan.pdf?sig=1",
			},
			contains: []string{`href="https://files.example.com/plan.pdf?sig=1"`, "7 days"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body, err := mailer.RenderPlanEmail(tt.in)
			if err != nil {
				t.Fatalf("RenderPlanEmail() error = %v", err)
			}
			if !strings.Contains(subject, tt.in.TrainerName) {
				t.Errorf("subject %q does not name the trainer", subject)
			}
			for _, want := range tt.contains {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q\n%s", want, body)
				}
			}
			for _, bad := range tt.notContains {
				if strings.Contains(body, bad) {
					t.Errorf("body must not contain %q", bad)
				}
			}
		})
	}
}
