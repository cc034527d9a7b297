package server

import "html/template"

type pageData struct {
	Languages []string
}

var languages = []string{"python", "javascript", "java", "cpp", "go"}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>AI Bug Detector</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 0 auto; padding: 20px; background: #f5f7fa; }
textarea { width: 100%; height: 300px; font-family: monospace; font-size: 15px; }
button { padding: 10px 24px; margin-top: 10px; }
.issue { background: #fff; border-left: 4px solid #4361ee; padding: 10px; margin: 10px 0; }
.issue.critical, .issue.high { border-color: #e63946; }
.issue.medium { border-color: #f72585; }
.error { color: #e63946; }
.scores span { margin-right: 20px; }
</style>
</head>
<body>
<h1>AI Bug Detector</h1>
<p>Paste code below to find bugs, security problems and performance issues.</p>
<form id="analyze-form">
  <label for="language">Language</label>
  <select id="language" name="language">
    {{range .Languages}}<option value="{{.}}">{{.}}</option>
    {{end}}
  </select>
  <textarea id="code" name="code" placeholder="Paste your code here..."></textarea>
  <button type="submit" id="analyze-btn">Analyze Code</button>
</form>
<div id="result"></div>
<script>
const form = document.getElementById('analyze-form');
const out = document.getElementById('result');
const btn = document.getElementById('analyze-btn');

function text(tag, cls, value) {
  const el = document.createElement(tag);
  if (cls) el.className = cls;
  el.textContent = value;
  return el;
}

form.addEventListener('submit', async (ev) => {
  ev.preventDefault();
  out.replaceChildren();
  btn.disabled = true;
  btn.textContent = 'Analyzing...';
  try {
    const resp = await fetch('/analyze', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({
        code: document.getElementById('code').value,
        language: document.getElementById('language').value,
      }),
    });
    const data = await resp.json();
    if (data.error) {
      out.appendChild(text('p', 'error', data.error));
    }
    if (resp.ok) {
      const scores = document.createElement('div');
      scores.className = 'scores';
      scores.appendChild(text('span', '', 'Quality: ' + data.code_quality_score));
      scores.appendChild(text('span', '', 'Security: ' + data.security_score));
      scores.appendChild(text('span', '', 'Performance: ' + data.performance_score));
      out.appendChild(scores);
      if (!data.has_issues && !data.error) {
        out.appendChild(text('p', '', 'No issues found.'));
      }
      for (const issue of data.issues || []) {
        const box = document.createElement('div');
        box.className = 'issue ' + issue.severity;
        box.appendChild(text('strong', '', issue.type + ' (' + issue.severity + ', line ' + issue.line_number + ')'));
        box.appendChild(text('p', '', issue.description));
        box.appendChild(text('p', '', 'Suggestion: ' + issue.suggestion));
        box.appendChild(text('small', '', 'Confidence: ' + issue.confidence + '%'));
        out.appendChild(box);
      }
    }
  } catch (err) {
    out.appendChild(text('p', 'error', 'Request failed: ' + err));
  } finally {
    btn.disabled = false;
    btn.textContent = 'Analyze Code';
  }
});
</script>
</body>
</html>
`))
