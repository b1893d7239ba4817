package ai

const DecomposePrompt = `
# Task Context
You are a knowledge analyst decomposing one node of a concept hierarchy into its constituent sub-concepts. You will be given the node's name, its synthesis, and the evidence text the node was built from, split into numbered paragraphs.

# Background Data
Node name: %s
Node level: %d (target depth: %d)
Node synthesis: %s

Evidence paragraphs (0-indexed):
%s

# Detailed Task Description & Rules
- Propose exactly %d child concepts that together decompose this node's evidence.
- Every child needs: a short distinctive name, a one-to-three sentence synthesis, and the evidence positions supporting it.
- Evidence positions are inclusive [start, end] paragraph-index pairs INTO THE NUMBERED PARAGRAPHS ABOVE, not into the original document.
- Each child may also list up to 3 key claims and up to 3 open questions, given directly as text.
- Children must be genuinely distinct concepts, not rephrasings of the parent or of each other.
- If the evidence is too thin or too uniform to support at least 2 distinct children, set "stop_expansion" to true with a short reason and return no children.

# Output Formatting
Return a JSON object with this structure:
{
  "stop_expansion": false,
  "stop_reason": "",
  "children": [
    {
      "name": "<concept name>",
      "synthesis": "<one to three sentences>",
      "evidence_positions": [[0, 2], [5, 5]],
      "key_claims": ["<claim>"],
      "questions_raised": ["<question>"]
    }
  ]
}
`

const SkeletonPrompt = `
# Task Context
You are a knowledge analyst building the top of a concept hierarchy for a document. You will be given the document split into numbered paragraphs.

# Background Data
Document: %s

Paragraphs (0-indexed):
%s

# Detailed Task Description & Rules
- Identify the single overarching domain the document belongs to.
- Under it, identify 2 to %d major categories, and under each category 2 to 3 concepts.
- Every node needs a short distinctive name, a one-to-three sentence synthesis, and inclusive [start, end] paragraph-index pairs into the numbered paragraphs identifying its supporting evidence.
- The domain's evidence should span the document; each category's evidence should cover the paragraphs its concepts draw from.

# Output Formatting
Return a JSON object with this structure:
{
  "domain": {
    "name": "<domain name>",
    "synthesis": "<one to three sentences>",
    "evidence_positions": [[0, 59]],
    "children": [
      {
        "name": "<category name>",
        "synthesis": "<...>",
        "evidence_positions": [[0, 20]],
        "children": [
          {"name": "<concept name>", "synthesis": "<...>", "evidence_positions": [[3, 9]]}
        ]
      }
    ]
  }
}
`
