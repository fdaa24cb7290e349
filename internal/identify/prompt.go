package identify

// Prompt is sent alongside every image. The model is asked for a single JSON
// object with exactly the PlantRecord keys and no markdown around it; replies
// still go through ExtractJSON because models do not always comply.
const Prompt = `Identify the plant in this image. Reply with a single JSON object and nothing else.
Do not wrap the JSON in markdown code fences and do not add any explanation before or after it.
Use exactly these keys:
{
  "name": "Common name of the plant",
  "scientificName": "Scientific name of the plant",
  "description": "Brief description of the plant",
  "careInstructions": ["Care instruction", "Another care instruction"],
  "healthStatus": "Healthy, or the name of the disease or infection if the plant is not healthy",
  "preventiveMeasures": ["Preventive measure", "Another preventive measure"],
  "family": "Plant family",
  "origin": "Geographic origin of the plant",
  "growthRate": "Growth rate (slow, moderate or fast)",
  "maxHeight": "Maximum height the plant can reach"
}
If healthStatus is "Healthy", preventiveMeasures must be an empty array.`
