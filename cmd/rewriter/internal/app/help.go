package app

// helpMarkdown is rendered with glamour when the help screen is open.
const helpMarkdown = `# Email Rewriter

Fill in all three fields, then press **ctrl+s**. The draft, the reason and
your instructions are sent to the rewriting service together with any
overrides from the settings panel.

| Key | Action |
|-----|--------|
| ctrl+s | Rewrite the draft |
| esc | Cancel a running rewrite, close a panel |
| tab / shift+tab | Move between fields |
| ctrl+y | Copy the rewritten body |
| ctrl+d | Toggle the diff against your draft |
| ctrl+o | Open or close the settings panel |
| pgup / pgdn | Scroll |
| ctrl+g | Toggle this help |
| ctrl+c | Quit |

## Settings

API key, model and base URL are optional. Blank values are not sent and the
service uses its own defaults. Every edit is saved immediately.

Always review the rewritten email before sending it.
`
