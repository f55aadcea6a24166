package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ayushhkrr/PromptVerse/models"
)

// Generator is the external generation backend. *pkg.GenClient satisfies it.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// PreviewLogic produces sample outputs for approved listings. Nothing is
// persisted; the backend may return different output on every call.
type PreviewLogic struct {
	prompts PromptStore
	gen     Generator
}

func NewPreviewLogic(prompts PromptStore, gen Generator) *PreviewLogic {
	return &PreviewLogic{prompts: prompts, gen: gen}
}

// Preview substitutes the listing's sample input into its template and runs
// the result through the backend selected by the listing type. The returned
// string is completion text for text prompts and an image URL for image
// prompts.
func (l *PreviewLogic) Preview(ctx context.Context, id uuid.UUID) (*models.Prompt, string, error) {
	prompt, err := l.prompts.ByID(ctx, id)
	if err != nil {
		return nil, "", mapNotFound(err)
	}
	if prompt.Status != models.ModerationApproved {
		return nil, "", fmt.Errorf("%w: prompt is not approved yet", ErrForbidden)
	}
	if prompt.SampleInput == "" {
		return nil, "", fmt.Errorf("%w: this prompt has no sample input for preview", ErrValidation)
	}

	full := strings.Replace(prompt.Body, models.PlaceholderToken, prompt.SampleInput, 1)

	var out string
	switch prompt.Type {
	case models.PromptTypeImage:
		out, err = l.gen.GenerateImage(ctx, full)
	case models.PromptTypeText:
		out, err = l.gen.GenerateText(ctx, full)
	default:
		return nil, "", fmt.Errorf("%w: unknown prompt type %q", ErrValidation, prompt.Type)
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: generation backend: %v", ErrUpstream, err)
	}
	return prompt, out, nil
}
