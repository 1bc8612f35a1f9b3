package enrich

import (
	"fmt"
	"strings"

	"github.com/Abdulla090/knote/internal/services/notes"
)

func languageName(lang notes.Language) string {
	if lang == notes.LanguageKurdish {
		return "Kurdish Sorani (Central Kurdish)"
	}
	return "English"
}

func respondIn(lang notes.Language) string {
	if lang == notes.LanguageKurdish {
		return "Respond in Kurdish Sorani (Central Kurdish) using Sorani script."
	}
	return "Respond in English."
}

func transcribePrompt(lang notes.Language) string {
	return fmt.Sprintf(`Transcribe the following audio accurately. The audio is in %s.
Provide the transcription as plain text. If you detect the language is different from what was specified,
transcribe in the actual language spoken. Keep the original language - do not translate.
Return ONLY the transcription text, nothing else.`, languageName(lang))
}

func transcribeSegmentsPrompt(lang notes.Language) string {
	return fmt.Sprintf(`Transcribe the following audio with timestamps. The audio is in %s.
Return a JSON object with this exact structure:
{
  "language": "detected language code",
  "segments": [
    {"start": "MM:SS", "end": "MM:SS", "text": "segment text", "speaker": "Speaker 1"}
  ]
}
Identify distinct speakers if there are multiple. Keep the original language - do not translate.`, languageName(lang))
}

func summarizePrompt(level notes.SummaryLevel, lang notes.Language) string {
	var instruction string
	switch level {
	case notes.SummaryBrief:
		instruction = "Provide a very brief summary in 1-2 sentences."
	case notes.SummaryDetailed:
		instruction = "Provide a comprehensive detailed summary. Include all important points, action items, and key details."
	default:
		instruction = "Provide a summary with key points in bullet format. Include 3-7 key points."
	}
	return fmt.Sprintf(`%s %s
Summarize the following note content. Preserve important names, dates, and numbers.`, instruction, respondIn(lang))
}

func titlePrompt(lang notes.Language) string {
	return fmt.Sprintf(`Generate a short, descriptive title (max 8 words) for the following note content.
The title should be in %s.
Return ONLY the title text, nothing else.`, languageName(lang))
}

func tagsPrompt(lang notes.Language) string {
	return fmt.Sprintf(`Analyze the following note content and suggest 2-5 relevant tags.
Tags should be in %s.
Return a JSON array of tag strings. Example: ["meeting", "project", "deadline"]
Return ONLY the JSON array, nothing else.`, languageName(lang))
}

func categorizePrompt(folderNames []string) string {
	return fmt.Sprintf(`Based on the following note content, which of these existing folders is the best match?
Available folders: %s

Return a JSON object:
{
  "folder": "best matching folder name or null if none match well",
  "confidence": 0.0 to 1.0,
  "suggestedNewFolder": "name of new folder if no good match exists, or null"
}
Return ONLY the JSON, nothing else.`, strings.Join(folderNames, ", "))
}

func actionItemsPrompt(lang notes.Language) string {
	return fmt.Sprintf(`Extract any action items, tasks, or to-dos from the following note content.
Keep items in %s.
Return a JSON array of objects: [{"text": "action item text", "completed": false}]
If no action items found, return an empty array: []
Return ONLY the JSON array, nothing else.`, languageName(lang))
}

func keyPointsPrompt(lang notes.Language) string {
	return fmt.Sprintf(`Extract the 3-7 most important key points from the following note content.
Keep the points in %s.
Return a JSON array of short point strings. Example: ["budget approved", "launch moved to May"]
Return ONLY the JSON array, nothing else.`, languageName(lang))
}

func moodPrompt() string {
	return `Analyze the emotional tone and sentiment of the following journal entry or note.
Identify the primary mood from this list: Happy, Sad, Anxious, Calm, Excited, Frustrated, Grateful, Neutral.
Also provide a brief 1-sentence explanation of why this mood was chosen.
Return a JSON object: {"mood": "MoodName", "reason": "Brief explanation", "score": 0.0 to 1.0 (where 0 is very negative and 1 is very positive)}
Return ONLY the JSON object, nothing else.`
}

func translatePrompt(target notes.Language) string {
	return fmt.Sprintf("Translate the following text to %s. Return ONLY the translation, nothing else.", languageName(target))
}

func flashcardsPrompt(lang notes.Language) string {
	return fmt.Sprintf(`Analyze the following note content and generate educational Q&A flashcards. Focus on the most important concepts, facts, or definitions.
The flashcards should be in %s.
Return a JSON array of objects with the exact structure: [{"question": "...", "answer": "..."}]
Generate between 3 and 10 flashcards depending on the note's length. Return ONLY the JSON array, nothing else.`, languageName(lang))
}

func mindMapPrompt(lang notes.Language) string {
	return fmt.Sprintf(`Analyze the following note content and extract its core structure into a hierarchical tree format suitable for a mind map.
The nodes should be in %s.
Identify the central topic, main branches, and sub-branches.
Return a JSON object with this exact structure:
{
  "id": "root",
  "label": "Central Topic",
  "children": [
    {
      "id": "branch1",
      "label": "Main Branch 1",
      "children": [{"id": "sub1", "label": "Sub Branch 1"}]
    }
  ]
}
Return ONLY the JSON object, nothing else.`, languageName(lang))
}
