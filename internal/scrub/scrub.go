package scrub

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
)

// Mask replaces every secret occurrence
const Mask = "***"

// Scrub replaces every non-empty secret in text with Mask.
// Longer secrets are replaced first so that a secret containing another one is fully masked.
func Scrub(text string, secrets []string) string {
	ordered := make([]string, 0, len(secrets))
	for _, secret := range secrets {
		if secret != "" && !slices.Contains(ordered, secret) {
			ordered = append(ordered, secret)
		}
	}
	if len(ordered) == 0 {
		return text
	}

	slices.SortStableFunc(ordered, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})

	pairs := make([]string, 0, 2*len(ordered))
	for _, secret := range ordered {
		pairs = append(pairs, secret, Mask)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// ScrubBodies masks secrets in packed comment bodies. Masking can lengthen a
// body when a secret is shorter than Mask, so bodies pushed over limit are logged.
func ScrubBodies(bodies []string, secrets []string, limit int, log *slog.Logger) []string {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	scrubbed := make([]string, len(bodies))
	for i, body := range bodies {
		scrubbed[i] = Scrub(body, secrets)
		if scrubbed[i] != body {
			log.Debug("Masked secrets in comment", "part", i+1)
		}
		if len(scrubbed[i]) > limit && len(body) <= limit {
			log.Warn("Comment exceeds size limit after masking secrets",
				"part", i+1, "length", len(scrubbed[i]), "limit", limit)
		}
	}
	return scrubbed
}
