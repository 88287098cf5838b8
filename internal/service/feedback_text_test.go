package service

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSplitFeedback(t *testing.T) {
	Convey("Given free-text lecture feedback", t, func() {
		Convey("When sentences match distinct keyword buckets", func() {
			text := "The examples were very clear. The pacing was too fast! Please add a link to the slides."

			sections := SplitFeedback(text)

			So(sections.Strengths, ShouldResemble, []string{"The examples were very clear"})
			So(sections.Weaknesses, ShouldResemble, []string{"The pacing was too fast"})
			So(sections.Resources, ShouldResemble, []string{"Please add a link to the slides"})
			So(sections.Suggestions, ShouldBeEmpty)
		})

		Convey("When a sentence matches no keyword", func() {
			sections := SplitFeedback("Maybe cover testing next time.")

			Convey("Then it lands in the suggestions bucket", func() {
				So(sections.Suggestions, ShouldResemble, []string{"Maybe cover testing next time"})
			})
		})

		Convey("When a sentence matches several buckets", func() {
			sections := SplitFeedback("The book recommendation was good.")

			Convey("Then the first bucket in precedence order wins", func() {
				So(sections.Strengths, ShouldHaveLength, 1)
				So(sections.Resources, ShouldBeEmpty)
			})
		})

		Convey("When matching is needed across letter case", func() {
			sections := SplitFeedback("GREAT lecture")

			So(sections.Strengths, ShouldResemble, []string{"GREAT lecture"})
		})

		Convey("When the text is empty or whitespace", func() {
			sections := SplitFeedback("   \n  ")

			So(sections.Strengths, ShouldBeEmpty)
			So(sections.Weaknesses, ShouldBeEmpty)
			So(sections.Suggestions, ShouldBeEmpty)
			So(sections.Resources, ShouldBeEmpty)
		})

		Convey("When sentences are separated by newlines without punctuation", func() {
			sections := SplitFeedback("good slides\nconfusing notation")

			So(sections.Strengths, ShouldHaveLength, 1)
			So(sections.Weaknesses, ShouldHaveLength, 1)
		})
	})
}
