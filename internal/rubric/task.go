// Package rubric evaluates free-text descriptions of Argentine experiences
// against a fixed cultural rubric.
//
// The task sent to the judge is built deterministically from the request so
// that every independent execution sees the same prompt, the judge call runs
// under strict consensus, and the agreed output is validated without any
// clamping or repair beyond stripping markdown fences.
package rubric

import (
	"fmt"
	"strings"

	"github.com/ahrav/go-gaucho/internal/domain"
)

// acceptableQuality is the quality at or above which no penalty is advised.
const acceptableQuality = 50

// PenaltyPercent returns the advisory score reduction for an image quality
// q in 0..100, round((0.5 - q/100) * 100) below 50 and 0 otherwise. In
// integer percent the formula is exactly 50 - q, which avoids the float
// error that makes q=40 come out as 9.
func PenaltyPercent(q int) int {
	if q >= acceptableQuality {
		return 0
	}
	return acceptableQuality - q
}

// QualityAdvisory renders the image quality line included in the task, or
// an empty string when no quality was supplied. The penalty is guidance for
// the judge only; the engine never adjusts the score itself.
func QualityAdvisory(quality *int) string {
	if quality == nil {
		return ""
	}
	q := *quality
	fraction := float64(q) / 100
	if q < acceptableQuality {
		return fmt.Sprintf("Image Quality: %.2f (LOW QUALITY - will reduce score by approximately %d%%)", fraction, PenaltyPercent(q))
	}
	return fmt.Sprintf("Image Quality: %.2f (acceptable)", fraction)
}

// BuildTask renders the judge task for req. The output depends only on req.
func BuildTask(req domain.EvaluationRequest) string {
	tags := "none"
	if len(req.Tags) > 0 {
		tags = strings.Join(req.Tags, ", ")
	}
	quality := ""
	if line := QualityAdvisory(req.ImageQuality); line != "" {
		quality = "\n" + line
	}
	return fmt.Sprintf(taskTemplate, req.Description, tags, len(req.Tags), quality)
}

// taskTemplate takes the description, the joined tags, the tag count and the
// optional quality line.
const taskTemplate = `
Analyze the following description and determine if it represents a culturally Argentine experience.

Description: %s
Tags: %s
Number of tags: %d%s

Instructions:
1. Analyze the description and determine if it reflects something typical or culturally Argentine.
2. Count how many distinct Argentine cultural elements are mentioned in the description (see list below).
3. Assign a BASE score between 0 and 100:
   - 0–20: not Argentine or generic.
   - 21–50: partially Argentine or ambiguous.
   - 51–80: clearly Argentine (customs, foods, places, expressions).
   - 81–95: national icon or strong cultural symbol with multiple elements.
   - 96–100: EXCEPTIONAL - requires MORE THAN 4 distinct Argentine cultural elements AND must be a national icon or extremely strong cultural symbol.

4. Apply adjustments:
   - If image_quality < 50 (representing 0.5 on a 0-100 scale): Reduce the BASE score proportionally. For example, if quality is 30 (representing 0.3, 20%% below 0.5), reduce score by approximately 20%%. If quality is 20 (representing 0.2), reduce by approximately 30%%.
   - If there are 2 tags: Add +5 points to the adjusted score.
   - IMPORTANT: To reach 100 points, the description MUST mention MORE THAN 4 distinct Argentine cultural elements AND represent a national icon or extremely strong cultural symbol.

5. Write a brief message in English (max. 200 characters), with a friendly tone or local humor.

6. Argentine cultural elements to detect (count distinct mentions):
   - **Food**: asado, mate, empanadas, dulce de leche, alfajores, fernet con coca, yerba mate, choripán, milanesa, facturas, medialunas
   - **Traditions**: gaucho, poncho, folklore (zamba, chacarera, malambo), cumbia argentina, tango, colectivo, "che", "quilombo", abrazo argentino
   - **Touristic locations**: Obelisco, Caminito, Cataratas del Iguazú, Perito Moreno, Casa Rosada, Mar del Plata, Jardín Japonés, Bariloche, Ushuaia, La Boca, San Telmo
   - **Sports**: soccer, Bombonera, Messi, Maradona, pato (deporte nacional), rugby, tenis, camisetas de selección
   - **Famous people**: Messi, Maradona, Evita, Borges, Gardel, Favaloro, Che Guevara, Perón, Diego Armando Maradona
   - **Crypto**: Ethereum logos, Vitalik, devconnect, crypto conferences, blockchain events in Buenos Aires
   - **Easter eggs**: logos de Crecimiento, ZKZync, GenLayer, Ethereum, referencias ocultas culturales

7. If there is no clear local reference, low score and explanatory message.

Respond ONLY with a valid JSON in this exact format:
{
    "score": int,
    "message": str
}

IMPORTANT:
- Do NOT include any text outside the JSON.
- The output must be perfectly parseable by a JSON parser.
- The message must have a maximum of 200 characters.
- The message must be in English.
- The final score must be between 0 and 100 after all adjustments.
- Remember: Score 100 requires MORE THAN 4 distinct cultural elements AND must be exceptional.
`
