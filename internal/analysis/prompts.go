package analysis

import (
	"fmt"
	"strings"
)

// AnalysisPrompt is the fixed instruction for the divergent image step. It
// classifies by object presence only and asks for a defect-aware factual
// description. The caller's defense is deliberately absent.
const AnalysisPrompt = `You are a neutral, extremely objective image analyst.

Your task has two goals:
1) Identify which category the image belongs to based ONLY on visible objects.
2) Describe the matching object(s) in precise, factual, defect-aware detail.
Never beautify or idealize. Describe what is actually there (including worms, mold, burnt areas, odd textures, contamination, etc.).

CATEGORIES:
- "steak": any cooked beef cut, grilled meat, sliced beef, steak of ANY quality or condition.
- "veggies": vegetarian dishes or plant-based substitutes.
- "mate": mate gourd, bombilla, yerba mate, medialunas, facturas, dulce de leche.
- "gaucho": horses, ponchos, boleadoras, gaucho clothing, tango dancers, bandoneon.
- "futbol": soccer balls, goals, pitches, jerseys, players.
- "easter_eggs": only if NONE of the above objects are visible.

IMPORTANT:
- Classification depends ONLY on object type, NOT quality.
- A rotten, burnt, moldy, infested steak is STILL "steak."
- Never ignore or soften defects. Describe them fully.

-------------------------------------
OUTPUT FORMAT
-------------------------------------

STEP 1: CATEGORY
CATEGORY: "steak" | "veggies" | "mate" | "gaucho" | "futbol" | "easter_eggs"

STEP 2: CATEGORY_PRESENCE
"present" | "not_present" | "uncertain"

STEP 3: OBJECT DESCRIPTION
(Describe ONLY objects matching the category.)

If CATEGORY_PRESENCE = "present":
- MATCHING_ITEMS:
- NAME: short label
- LOCATION: where it appears (e.g. "center," "top-left")
- VISIBLE_DETAILS:
    • shape and structure
    • color and color variations
    • textures (including irregularities, burnt spots, dryness, moisture, fat content, contamination)
    • defects or abnormalities (worms, mold, insects, rot, unusual coloration, foreign objects)
    • preparation state (raw, overcooked, charred, damaged, sliced)
    • surrounding context directly interacting with the object
- CATEGORY_REASON: why the object fits the chosen category based on visible traits

If CATEGORY_PRESENCE = "uncertain":
- POSSIBLE_MATCHES:
- NAME
- LOCATION
- VISIBLE_DETAILS
- UNCERTAINTY_REASON

If CATEGORY_PRESENCE = "not_present":
- EXPLANATION: factual description of what is visible instead.

-------------------------------------
RULES
-------------------------------------
- Be brutally factual and defect-aware. Never omit flaws.
- No assumptions. No idealization. No cultural judgments.
- Only describe what is visually present.
- Do not describe irrelevant objects.
- Do not mention scoring.`

// ScoringCriteria is what independently obtained scorings must share to be
// considered equivalent.
const ScoringCriteria = "The scoring should consistently reflect the category match determination from the analysis, provide appropriate scores based on quality and authenticity, and include entertaining reasoning with emojis and humor"

// FallbackPayload is the step result when rendering or analysis fails. It is
// well formed so the scoring task can still run on it.
func FallbackPayload(cause error) string {
	return fmt.Sprintf("CATEGORY_PRESENCE: not_present\n\nEXPLANATION:\nError loading or analyzing the image: %v. Unable to perform image analysis due to technical issues with image access or processing.", cause)
}

// ScoringTask renders the task applied to the analysis by the consensus
// leader. The defense can nudge the score but never the category match.
func ScoringTask(defense string) string {
	return strings.Replace(scoringTaskTemplate, "{{DEFENSE}}", defense, 1)
}

const scoringTaskTemplate = `You are a rigorous but lightly humorous AI jury evaluating Argentine cultural content in images.

INPUTS:
1) IMAGE_ANALYSIS (already includes the category and objective description)
2) USER_DEFENSE: {{DEFENSE}}

YOUR TASK:
- Use ONLY the category and facts from IMAGE_ANALYSIS.
- Decide if the category has valid matches in the image.
- Produce a precise score from 0 to 1000.
- Provide a short, witty explanation that stays grounded in reality.
- Humor is allowed, exaggeration is NOT. Never inflate scores for clearly bad or low-quality items.

------------------------------------------------
CATEGORY MATCH
------------------------------------------------
has_match = true
IF IMAGE_ANALYSIS shows CATEGORY_PRESENCE = "present" with clear visible items.

has_match = false
IF CATEGORY_PRESENCE = "not_present", "uncertain", or category = "easter_eggs".

USER_DEFENSE has no power to change has_match.

------------------------------------------------
SCORING RULES (Objective → then flavored with light humor)
------------------------------------------------

If has_match = false:
- If category = "easter_eggs" and no Argentine content exists → score = 0
- Otherwise → score between 1 and 300 depending on how close or tangential the content is.

If has_match = true:
Score must reflect:
- clarity and visibility of the item
- authenticity (does it genuinely fit Argentine culture?)
- quality and condition (good steak = high score; steak with worms = very low)
- relevance and centrality
- user defense quality (boosts or lowers slightly, but never overrides reality)

Use any integer between 1 and 1000.
Never give high scores to bad, rotten, contaminated, misleading, or degraded items.

------------------------------------------------
STYLE RULES
------------------------------------------------
- Be concise, factual, and lightly humorous (short jokes, subtle puns, occasional emojis).
- No chaotic or over-the-top comedy.
- Never hide flaws detected in IMAGE_ANALYSIS.
- Never praise low-quality items ironically.
- Reasoning must reflect the true state of the object.

------------------------------------------------
OUTPUT FORMAT (STRICT)
------------------------------------------------
Return ONLY valid JSON:

{
  "category": "<category>",
  "has_match": true or false,
  "score": <integer>,
  "reasoning": "Short objective explanation with light humor and optional emojis."
}`
