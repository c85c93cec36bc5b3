package vision

// classificationPrompt is the fixed instruction sent with every image. It
// pins the exact JSON shape the adapter parses; any deviation in the model
// reply is treated as a failed call.
const classificationPrompt = `You are a dermatology analysis assistant. Analyze the provided
skin lesion image and respond with a single JSON object, and nothing else, in
exactly this shape:

{
  "classification": "Benign" or "Malignant",
  "confidence": a number between 0 and 1,
  "characteristics": {
    "color": "description of the lesion's coloration",
    "border": "description of the border definition",
    "symmetry": "description of the overall symmetry",
    "texture": "description of the surface texture"
  },
  "reasoning": "a short explanation of the assessment",
  "recommendations": ["a list of follow-up recommendations"]
}

Base the assessment on standard visual criteria: color uniformity, border
regularity, symmetry, and texture. Do not include markdown fences or any text
outside the JSON object.`

// Prompt returns the fixed classification instruction.
func Prompt() string {
	return classificationPrompt
}
