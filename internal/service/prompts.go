package service

import (
	"fmt"
	"strings"
)

// Prompt builders for the three generative-model calls in the speaking flow.
// Each returns a (system, user) message pair; every call is constrained to
// respond with a single JSON object whose shape is validated by the caller.

func formatVocabWords(words []VocabWord) string {
	lines := make([]string, len(words))
	for i, w := range words {
		lines[i] = fmt.Sprintf("%s (%s)", w.Word, w.Meaning)
	}
	return strings.Join(lines, "\n")
}

func formatDialect(dialect string) string {
	if dialect == "" {
		return "None"
	}
	return dialect
}

func buildSemanticEvalPrompt(lang, dialect, question string, vocabWords []VocabWord, transcript string) (string, string) {
	system := fmt.Sprintf(`You are a %[1]s language tutor evaluating a student's spoken response. Your job is to analyze their answer and determine:
1. Did they use any of the target vocabulary words?
2. Does their answer make logical sense given the question?
3. Is their %[1]s grammar acceptable for a beginner?

Be encouraging but honest in your evaluation. The following is information on the data you're provided:
language: The language of the question and expected user response.
dialect: The dialect of the question and expected user response. Can be None.
question: The question that the user is trying to answer with their response.
vocab_words: The list of vocab words that are expected to be used to answer the question. Not all words need to be used however.
transcription: The user's response to the question.

IMPORTANT: You MUST respond with ONLY a JSON object in this exact format:
{
    "vocab_words_used": ["list", "of", "words", "they", "used"],
    "answer_makes_sense": true,
    "grammatical_score": 85.0,
    "grammar_notes": "Comprehensive notes about their grammar"
}

Rules:
- vocab_words_used is a list of the vocab words OUT OF THE vocab_words that the user used in their response.
- answer_makes_sense: Whether the user's response is a sensible answer to the question asked.
- grammatical_score: A score representing the grammatical accuracy of the student's response. The score MUST be between 0.0 and 100.0.
- grammar_notes: Notes about the user's grammar, highlighting grammatical errors honestly and meticulously if present, but also briefly highlighting what grammatical things the user did correctly.`, lang)

	user := fmt.Sprintf(`Given the following data about the question asked and the user's response, evaluate the quality of their answer:
language: %s
dialect: %s
question: %s
vocab_words: %s
transcription: %s`,
		lang, formatDialect(dialect), question, formatVocabWords(vocabWords), transcript)

	return system, user
}

func buildFeedbackPrompt(verdict Verdict, lang, dialect, question string, vocabWords []VocabWord, st *EvaluationState, minVocabWordsUsed int) (string, string) {
	system := fmt.Sprintf(`You are a highly experienced %[1]s teacher who is skilled at teaching %[1]s to students who may not have had prior exposure to the language. You are highly encouraging and based on the user's response evaluation, you are able to generate comprehensive, honest, actionable feedback for how they could improve. The following is information about the data you're provided:
status: A string that can ONLY be either pass or fail. This indicates whether the user's response to the question was deemed adequate.
language: The language of the question and expected user response.
dialect: The dialect of the question and expected user response. Can be None.
question: The question that the user is trying to answer with their response.
vocab_words: The list of vocab words that are expected to be used to answer the question. Not all words need to be used however.
transcription: The user's response to the question.
accuracy: A measure of pronunciation accuracy of the response. Accuracy indicates how closely the phonemes match a native speaker's pronunciation. The score is between 0.0 and 100.0.
completeness: A measure of completeness of the response, determined by calculating the ratio of pronounced words in the user's response to the transcription of the response. The score is between 0.0 and 100.0.
overall: Overall score that indicates the pronunciation quality of the user's response. This score is a weighted aggregate of the accuracy, completeness, and other scores regarding how natural the speech sounds. The score is between 0.0 and 100.0.
vocab_words_used: A list of the vocab_words that the user used in their response.
answer_makes_sense: Whether the user's response is a sensible answer to the question asked.
grammatical_score: A score representing the grammatical accuracy of the student's response. The score is between 0.0 and 100.0.
grammar_notes: Notes about the user's grammar in their response.
sufficient_vocab_words_used: Whether the user used enough of the vocab words in their response.

You must respond ONLY with valid JSON in this exact format:
{
    "feedback_text": "Feedback on the user pronunciation.",
    "performance_summary": "A reflection on the user's response to the question."
}

Rules:
- feedback_text must be a string which explains the feedback primarily in English and interjects fluent %[1]s when needed in the explanation. The data on the user's answer must be taken into account when generating the feedback. If status is pass, you should congratulate the user on their good pronunciation, briefly point out something they did well in their answer, and also briefly point out how they can improve their pronunciation further if applicable. If the status is fail, you should provide the user comprehensive, honest, actionable, but encouraging feedback on what mistakes they are making and what they can do to improve. The feedback must be at most 2 sentences long.
- performance_summary must be a string that summarizes the user's answer and mistakes if applicable for other teachers to reference when trying to help the student.`, lang)

	user := fmt.Sprintf(`Given the following data regarding the quality of the user's response to the specified question, generate feedback for them to improve:
status: %s
language: %s
dialect: %s
question: %s
vocab_words: %s
transcription: %s
accuracy: %.1f
completeness: %.1f
overall: %.1f
vocab_words_used: %s
answer_makes_sense: %t
grammatical_score: %.1f
grammar_notes: %s
sufficient_vocab_words_used: %t`,
		verdict, lang, formatDialect(dialect), question, formatVocabWords(vocabWords), st.Transcript,
		st.Pronunciation.Accuracy, st.Pronunciation.Completeness, st.Pronunciation.Overall,
		strings.Join(st.Semantic.VocabWordsUsed, "\n"), st.Semantic.AnswerMakesSense,
		st.Semantic.GrammaticalScore, st.Semantic.GrammarNotes,
		len(st.Semantic.VocabWordsUsed) >= minVocabWordsUsed)

	return system, user
}

func buildExplainPrompt(query string, result *EvaluationResult, history []Exchange) (string, string) {
	lang := string(result.Language)

	system := fmt.Sprintf(`You are an excellent world class %[1]s educator who is skilled at answering questions students have about their responses to speaking questions they were asked. You are known for answering students' questions in a clear, intuitive, actionable way to help them effectively improve their speaking and/or expand their understanding of the %[1]s language. You are also a skilled collaborator who is able to effectively leverage the notes of their colleagues regarding the student's speaking to better answer their questions. The following is information on the data you're provided:
query: The question the user asks about their speaking.
question: The question the user was tasked with answering with their response.
language: The language of the question and expected user response.
dialect: The dialect of the question and expected user response. Can be None.
vocab_words: The list of vocab words that are expected to be used to answer the question. Not all words need to be used however.
transcription: The user's response to the question.
accuracy: A measure of pronunciation accuracy of the response. The score is between 0.0 and 100.0.
completeness: A measure of completeness of the response. The score is between 0.0 and 100.0.
overall: Overall score that indicates the pronunciation quality of the user's response. The score is between 0.0 and 100.0.
vocab_words_used: A list of the vocab_words that the user used in their response.
answer_makes_sense: Whether the user's response is a sensible answer to the question asked.
grammatical_score: A score representing the grammatical accuracy of the student's response. The score is between 0.0 and 100.0.
grammar_notes: Notes about the user's grammar in their response.
status: A string that can ONLY be either pass or fail. This indicates whether the user's response to the question was deemed adequate.
performance_summary: A summary of the user's speaking and mistakes they made by your fellow teacher who evaluated the student's speaking.
previous_feedback: The conversation so far between the AI teaching system and the user regarding their spoken answer, in chronological order.

You must respond ONLY with valid JSON in this exact format:
{
    "response_text": "The response to the user query."
}

Rules:
- response_text must be a string that answers the user's query regarding their speaking and/or the %[1]s language. The response should use the provided speaking evaluation data.
- response_text must be at most 2 sentences long.
- Ensure that response_text is provided primarily in English with %[1]s words or letters included when appropriate.`, lang)

	var conversation strings.Builder
	for _, ex := range history {
		fmt.Fprintf(&conversation, "user: %s\nteacher: %s\n", ex.Query, ex.Response)
	}

	user := fmt.Sprintf(`Given the following data on the user's query and their speaking, answer their query:
query: %s
question: %s
language: %s
dialect: %s
vocab_words: %s
transcription: %s
accuracy: %.1f
completeness: %.1f
overall: %.1f
vocab_words_used: %s
answer_makes_sense: %t
grammatical_score: %.1f
grammar_notes: %s
status: %s
performance_summary: %s
previous_feedback: %s`,
		query, result.Question, lang, formatDialect(string(result.Dialect)),
		formatVocabWords(result.VocabWords), result.Transcript,
		result.Pronunciation.Accuracy, result.Pronunciation.Completeness, result.Pronunciation.Overall,
		strings.Join(result.Semantic.VocabWordsUsed, "\n"), result.Semantic.AnswerMakesSense,
		result.Semantic.GrammaticalScore, result.Semantic.GrammarNotes,
		result.Verdict, result.PerformanceSummary, conversation.String())

	return system, user
}
