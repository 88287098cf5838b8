package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

type stubArtifactClient struct {
	text string
	err  error
}

func (s *stubArtifactClient) FetchText(_ context.Context, _ string) (string, error) {
	return s.text, s.err
}

type stubGenAIClient struct {
	reply  string
	err    error
	prompt string
}

func (s *stubGenAIClient) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

func TestEvaluationService_EvaluateSubmission(t *testing.T) {
	Convey("Given an evaluation service with stubbed collaborators", t, func() {
		repo := newFakeLedgerRepo()
		ledger := NewLedgerService(repo, zerolog.Nop())
		artifacts := &stubArtifactClient{text: "package main"}
		genai := &stubGenAIClient{}
		svc := NewEvaluationService(artifacts, genai, ledger, zerolog.Nop())
		ctx := context.Background()

		Convey("When the model returns well-formed JSON", func() {
			genai.reply = `Here is my evaluation: {"score": 88.5, "strengths": "clear structure", "weaknesses": "no tests", "resources": "chapter 4"} hope it helps`

			result, err := svc.EvaluateSubmission(ctx, "a@x.com", "http://files/sub.txt")

			Convey("Then the parsed result is committed to the ledger", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldEqual, 88.5)
				So(result.Strengths, ShouldEqual, "clear structure")
				So(result.Fallback, ShouldBeFalse)
				So(result.Committed, ShouldBeTrue)

				rec, err := ledger.GetRecord(ctx, "a@x.com")
				So(err, ShouldBeNil)
				So(len(rec.PartialScores), ShouldEqual, 1)
				So(rec.PartialScores[0].Score, ShouldEqual, 88.5)
				So(rec.PartialScores[0].Name, ShouldStartWith, "AI Auto-Evaluation - ")
				So(rec.PartialScores[0].Feedback, ShouldNotBeNil)
				So(rec.PartialScores[0].Feedback.Weaknesses, ShouldEqual, "no tests")
			})

			Convey("And the prompt embeds the fetched artifact text", func() {
				So(genai.prompt, ShouldContainSubstring, "package main")
			})
		})

		Convey("When the model reply contains no JSON object", func() {
			genai.reply = "I am sorry, I cannot evaluate this submission."

			result, err := svc.EvaluateSubmission(ctx, "a@x.com", "http://files/sub.txt")

			Convey("Then the fixed fallback is committed and the call still succeeds", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldEqual, 75)
				So(result.Strengths, ShouldEqual, fallbackStrengths)
				So(result.Weaknesses, ShouldEqual, fallbackWeaknesses)
				So(result.Resources, ShouldEqual, fallbackResources)
				So(result.Fallback, ShouldBeTrue)
				So(result.Committed, ShouldBeTrue)

				rec, _ := ledger.GetRecord(ctx, "a@x.com")
				So(rec.PartialScores[0].Score, ShouldEqual, 75)
			})
		})

		Convey("When the JSON object itself is malformed", func() {
			genai.reply = `{"score": 90, "strengths": `

			result, err := svc.EvaluateSubmission(ctx, "a@x.com", "http://files/sub.txt")

			Convey("Then the fallback applies", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldEqual, 75)
				So(result.Fallback, ShouldBeTrue)
			})
		})

		Convey("When the score is a quoted number", func() {
			genai.reply = `{"score": "92", "strengths": "a", "weaknesses": "b", "resources": "c"}`

			result, err := svc.EvaluateSubmission(ctx, "a@x.com", "http://files/sub.txt")

			So(err, ShouldBeNil)
			So(result.Score, ShouldEqual, 92)
			So(result.Fallback, ShouldBeFalse)
		})

		Convey("When the score is out of range", func() {
			genai.reply = `{"score": 150, "strengths": "a", "weaknesses": "b", "resources": "c"}`

			result, err := svc.EvaluateSubmission(ctx, "a@x.com", "http://files/sub.txt")

			So(err, ShouldBeNil)
			So(result.Score, ShouldEqual, 100)
		})

		Convey("When the score key is missing or non-numeric", func() {
			genai.reply = `{"strengths": "a", "weaknesses": "b", "resources": "c", "score": "high"}`

			result, err := svc.EvaluateSubmission(ctx, "a@x.com", "http://files/sub.txt")

			So(err, ShouldBeNil)
			So(result.Score, ShouldEqual, 75)
		})

		Convey("When the artifact fetch fails", func() {
			artifacts.err = errors.New("status 404")

			_, err := svc.EvaluateSubmission(ctx, "a@x.com", "http://files/missing.txt")

			Convey("Then the failure is fatal and nothing is committed", func() {
				So(err, ShouldNotBeNil)
				_, err := ledger.GetRecord(ctx, "a@x.com")
				So(err, ShouldEqual, ErrRecordNotFound)
			})
		})

		Convey("When the model call fails", func() {
			genai.err = errors.New("model unavailable")

			_, err := svc.EvaluateSubmission(ctx, "a@x.com", "http://files/sub.txt")

			Convey("Then the failure is fatal", func() {
				So(err, ShouldNotBeNil)
				So(repo.commits, ShouldEqual, 0)
			})
		})
	})
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"surrounded by prose", `sure! {"a":1} done`, `{"a":1}`},
		{"nested braces", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"brace inside string", `{"a":"}"}`, `{"a":"}"}`},
		{"escaped quote inside string", `{"a":"\"}"}`, `{"a":"\"}"}`},
		{"no object", "nothing here", ""},
		{"unbalanced", `{"a":1`, ""},
		{"first of two", `{"a":1} {"b":2}`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONObject(tt.in); got != tt.want {
				t.Errorf("extractJSONObject(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
