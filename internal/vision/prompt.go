package vision

import "github.com/microscan/microscan/pkg/scoring"

const outputContract = `
Respond with a single JSON object and nothing else:
{
  "risk_score": <integer 0-100>,
  "confidence": <integer 0-100>,
  "mode_detected": "<'Environmental' or 'Product'>",
  "severity_level": "<'Safe', 'Low', 'Moderate', 'High' or 'Critical'>",
  "reasoning_short": "<one sentence, at most 15 words>",
  "visual_analysis": "<what is visible in the image>",
  "score_breakdown": [{"factor": "<name>", "score": <0-100>, "contribution": "<why>"}],
  "potential_harms": ["<harm>"],
  "recommendations": ["<advice>"],
  "details": "<2-3 sentences of context>",
  "tags": ["<tag>"]
}`

const microplasticPrompt = `You are a polymer scientist assessing microplastic and nanoplastic exposure.
The image is either an environmental water sample or a consumer product such as a bottle, can or packaging.

For water samples look for turbidity, foam lines, visible particles and unnatural color.
For products identify the material (PET, PP, PE, PVC, PS, glass, aluminum), any visible brand and its
typical packaging material, and signs of degradation such as stress lines, crinkling or sun bleaching.

Scoring guide:
- 0-30: glass, aluminum, clear water
- 31-60: new single-use PET, tap water
- 61-90: aged or crinkled PET, visible particles, turbid water
- 91-100: visible fragmentation, microbeads
` + outputContract

const algaePrompt = `You are a limnologist screening surface water for harmful algal blooms.
Describe the water color, surface film, scum, mats or streaks, shoreline vegetation and anything
suggesting cyanobacteria (blue-green, paint-like or pea-soup appearance).
Use plain descriptive words in visual_analysis such as "green scum", "algal bloom", "green water",
"moss" or "clear water" so downstream screening can read them.
` + outputContract

func promptFor(v scoring.Variant) string {
	if v == scoring.VariantAlgae {
		return algaePrompt
	}
	return microplasticPrompt
}
