package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>AMA Daily Combiner</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 640px; margin: 3rem auto; color: #222; }
  h1 { font-size: 1.4rem; }
  form { border: 1px solid #ccc; border-radius: 8px; padding: 1.5rem; }
  label { display: block; margin: .75rem 0 .25rem; }
  button { margin-top: 1rem; padding: .5rem 1.5rem; }
  #result { margin-top: 1.5rem; white-space: pre-wrap; font-family: monospace; font-size: .85rem; }
</style>
</head>
<body>
<h1>AMA Daily Combiner</h1>
<p>Upload a workbook containing the Timesheet and New Formula Job Sheet tabs.</p>
<form id="f">
  <label>Workbook (.xlsx)</label>
  <input type="file" name="file" accept=".xlsx" required>
  <label><input type="checkbox" name="single_sheet" value="true"> Single combined sheet</label>
  <label><input type="checkbox" name="intermediate" value="true"> Emit intermediate entry dumps</label>
  <button type="submit">Combine</button>
</form>
<div id="result"></div>
<script>
document.getElementById('f').addEventListener('submit', async (e) => {
  e.preventDefault();
  const out = document.getElementById('result');
  out.textContent = 'Running...';
  const resp = await fetch('/api/combine', { method: 'POST', body: new FormData(e.target) });
  const body = await resp.json();
  if (body.code === 0) {
    const d = body.data;
    out.innerHTML = 'Done: <a href="/api/outputs/' + encodeURIComponent(d.outputPath) + '">' +
      d.outputPath + '</a>\n\n' + JSON.stringify(d, null, 2);
  } else {
    out.textContent = 'Error: ' + body.message;
  }
});
</script>
</body>
</html>`

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}
