package engine

// LLM prompt templates — data only, no logic.

// researchSystem is the system instruction for every synthesizer call.
const researchSystem = `You are a research assistant that produces comprehensive, multi-layered analysis.

Principles:
- Cross-reference the provided sources; prefer recent, authoritative ones
- Include historical context, current developments and future implications
- Present differing perspectives and expert opinion where the sources contain them
- Include specific dates, numbers and verifiable facts
- Highlight contradictions or uncertainty in the available data

Report structure:
1. Executive Summary
2. Detailed Analysis
3. Multiple Perspectives
4. Historical Context
5. Current Status
6. Expert Insights
7. Future Implications
8. Critical Assessment (strengths and limits of the data)`

// planPrompt asks the chat model whether the query needs research.
// Args: current date, topic hint, query.
const planPrompt = `Decide whether the query below needs fresh web research or can be answered directly.

Current date: %s
Detected topic: %s

Respond with valid JSON only (no markdown, no ` + "`" + `json` + "`" + ` block):
{"action": "research", "query": "<search-optimized query>", "topic_type": "<news|general|academic|business|technology|health|politics>"}
or
{"action": "answer", "answer": "<complete answer>"}

Choose "research" for anything that depends on facts, events, data or recent developments.

Query: %s`

// reportPrompt asks for the final report. Args: current date, query, findings.
const reportPrompt = `Current date: %s

Provide comprehensive analysis on: %s

Research data:
%s`

// researchToolDescription describes the function the Gemini model may call.
const researchToolDescription = `Perform comprehensive, multi-angle research with advanced analysis. Use this for any query requiring thorough, accurate and up-to-date information.`
