package channels

var webChatLoginHTML = webChatLoginPage("")

var webChatLoginErrorHTML = webChatLoginPage("Invalid username or password")

func webChatLoginPage(errMsg string) string {
	errBlock := ""
	if errMsg != "" {
		errBlock = `<div class="login-error">` + errMsg + `</div>`
	}
	return `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>minichat - Login</title>
<style>
:root{
  --bg-primary:#f5f5f8;--bg-secondary:#ffffff;--bg-input:#f0f0f4;
  --border:#dcdce4;--border-focus:#6c5ce7;
  --accent:#6c5ce7;--accent-hover:#5a4bd1;--accent-glow:rgba(108,92,231,.15);
  --text-primary:#24242e;--text-secondary:#6b6a77;--text-muted:#9c9ba6;
  --error:#dc2626;--error-bg:rgba(220,38,38,.08);
}
*{box-sizing:border-box;margin:0;padding:0}
html,body{height:100%}
body{
  font-family:system-ui,-apple-system,sans-serif;
  background:var(--bg-primary);color:var(--text-primary);
  display:flex;align-items:center;justify-content:center;
}
.login-card{
  width:100%;max-width:380px;padding:40px 32px;
  background:var(--bg-secondary);border:1px solid var(--border);
  border-radius:16px;
}
.login-card h1{font-size:20px;font-weight:600;text-align:center;margin-bottom:4px}
.login-card .sub{font-size:13px;color:var(--text-muted);text-align:center;margin-bottom:28px}
.login-error{
  padding:10px 14px;margin-bottom:20px;
  background:var(--error-bg);border:1px solid rgba(220,38,38,.2);
  border-radius:8px;font-size:13px;color:var(--error);
}
.field{margin-bottom:16px}
.field label{display:block;font-size:13px;font-weight:500;color:var(--text-secondary);margin-bottom:6px}
.field input{
  width:100%;padding:11px 14px;
  background:var(--bg-input);border:1px solid var(--border);
  border-radius:8px;color:var(--text-primary);font-size:14px;
  font-family:inherit;outline:none;
}
.field input:focus{border-color:var(--border-focus);box-shadow:0 0 0 3px var(--accent-glow)}
.login-btn{
  width:100%;padding:12px;margin-top:8px;
  background:var(--accent);color:#fff;border:none;
  border-radius:10px;font-size:14px;font-weight:600;
  font-family:inherit;cursor:pointer;
}
.login-btn:hover{background:var(--accent-hover)}
</style>
</head>
<body>
<form class="login-card" method="POST" action="/login">
  <h1>minichat</h1>
  <p class="sub">Sign in to start chatting</p>
  ` + errBlock + `
  <div class="field"><label for="username">Username</label><input id="username" name="username" type="text" autocomplete="username" required autofocus></div>
  <div class="field"><label for="password">Password</label><input id="password" name="password" type="password" autocomplete="current-password" required></div>
  <button class="login-btn" type="submit">Sign in</button>
</form>
</body>
</html>`
}

var webChatHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>minichat</title>
<style>
:root{
  --bg-primary:#f5f5f8;--bg-secondary:#ffffff;--bg-input:#f0f0f4;
  --border:#dcdce4;--border-focus:#6c5ce7;
  --accent:#6c5ce7;--accent-hover:#5a4bd1;--accent-glow:rgba(108,92,231,.15);
  --text-primary:#24242e;--text-secondary:#6b6a77;--text-muted:#9c9ba6;
  --user-bg:linear-gradient(135deg,#6c5ce7 0%,#a855f7 100%);
  --assistant-bg:#ececf2;
  --error:#dc2626;--error-bg:rgba(220,38,38,.08);--error-border:rgba(220,38,38,.25);
}
body.dark{
  --bg-primary:#0f1117;--bg-secondary:#161822;--bg-input:#12141d;
  --border:#252836;--text-primary:#e8e6f0;--text-secondary:#8b8a97;
  --text-muted:#5c5b66;--assistant-bg:#1c1f2e;
  --error:#f87171;--error-bg:rgba(248,113,113,.08);--error-border:rgba(248,113,113,.25);
}
*{box-sizing:border-box;margin:0;padding:0}
html,body{height:100%}
body{
  font-family:system-ui,-apple-system,sans-serif;
  background:var(--bg-primary);color:var(--text-primary);
  display:flex;flex-direction:column;overflow:hidden;
}
#header{
  padding:14px 24px;background:var(--bg-secondary);
  border-bottom:1px solid var(--border);
  display:flex;align-items:center;gap:12px;flex-shrink:0;
}
#header h1{font-size:16px;font-weight:600}
#header .subtitle{font-size:12px;color:var(--text-muted)}
.header-right{margin-left:auto;display:flex;align-items:center;gap:8px}
.hbtn{
  background:none;border:1px solid var(--border);border-radius:8px;
  color:var(--text-secondary);padding:6px 12px;font-size:12px;
  font-family:inherit;cursor:pointer;
}
.hbtn:hover{border-color:var(--text-muted);color:var(--text-primary)}
#messages{
  flex:1;overflow-y:auto;padding:24px;
  display:flex;flex-direction:column;gap:14px;scroll-behavior:smooth;
}
#empty-state{
  flex:1;display:flex;align-items:center;justify-content:center;
  text-align:center;padding:40px;
}
#empty-state p{font-size:14px;color:var(--text-muted);max-width:340px}
.msg-row{display:flex}
.msg-row.user{justify-content:flex-end}
.msg-bubble{
  max-width:72%;padding:11px 15px;border-radius:14px;
  line-height:1.6;font-size:14px;white-space:pre-wrap;word-wrap:break-word;
}
.msg-row.user .msg-bubble{background:var(--user-bg);color:#fff;border-bottom-right-radius:5px}
.msg-row.assistant .msg-bubble{
  background:var(--assistant-bg);border:1px solid var(--border);
  border-bottom-left-radius:5px;
}
.msg-row.assistant .msg-bubble.error{
  background:var(--error-bg);border-color:var(--error-border);color:var(--error);
}
.msg-bubble .time{font-size:11px;color:var(--text-muted);margin-top:5px;display:block}
.msg-row.user .msg-bubble .time{color:rgba(255,255,255,.45)}
#typing{padding:0 24px;min-height:24px;font-size:13px;color:var(--text-muted);flex-shrink:0}
#input-area{
  padding:14px 24px 18px;background:var(--bg-secondary);
  border-top:1px solid var(--border);flex-shrink:0;
}
.input-wrapper{
  display:flex;align-items:flex-end;gap:10px;
  background:var(--bg-input);border:1px solid var(--border);
  border-radius:12px;padding:4px 4px 4px 16px;
}
.input-wrapper:focus-within{border-color:var(--border-focus);box-shadow:0 0 0 3px var(--accent-glow)}
#input{
  flex:1;padding:10px 0;border:none;font-size:14px;
  background:transparent;color:var(--text-primary);
  outline:none;resize:none;max-height:120px;font-family:inherit;
}
#send{
  width:38px;height:38px;background:var(--accent);color:#fff;
  border:none;border-radius:10px;cursor:pointer;font-size:15px;
}
#send:hover{background:var(--accent-hover)}
#send:disabled{opacity:.35;cursor:not-allowed}
@media(max-width:640px){#messages{padding:16px}.msg-bubble{max-width:85%}}
</style>
</head>
<body>
<div id="header">
  <div><h1>minichat</h1><span class="subtitle">Asistente</span></div>
  <div class="header-right">
    <button class="hbtn" id="theme-btn" aria-label="Toggle dark mode">Tema</button>
    <button class="hbtn" id="export-btn">Exportar</button>
    <button class="hbtn" id="share-btn">Compartir</button>
    <button class="hbtn" id="clear-btn">Borrar</button>
  </div>
</div>
<div id="messages">
  <div id="empty-state"><p>Escribe un mensaje para empezar la conversación.</p></div>
</div>
<div id="typing"></div>
<div id="input-area">
  <div class="input-wrapper">
    <textarea id="input" rows="1" placeholder="Escribe tu mensaje..." aria-label="Chat message input"></textarea>
    <button id="send" aria-label="Send message">&#10148;</button>
  </div>
</div>
<script>
const msgsEl=document.getElementById("messages"),
      input=document.getElementById("input"),
      btn=document.getElementById("send"),
      typingEl=document.getElementById("typing"),
      emptyState=document.getElementById("empty-state");
let busy=false,dark=false;
function esc(s){return s.replace(/&/g,"&amp;").replace(/</g,"&lt;").replace(/>/g,"&gt;")}
function renderContent(raw){
  let t=esc(raw);
  t=t.replace(/\*\*(.+?)\*\*/g,'<strong>$1</strong>');
  return t;
}
function fmtTime(ts){return new Date(ts||Date.now()).toLocaleTimeString([],{hour:'2-digit',minute:'2-digit'})}
function addMsg(role,content,ts,isErr){
  if(emptyState&&emptyState.parentNode)emptyState.remove();
  const row=document.createElement("div");row.className="msg-row "+role;
  const bubble=document.createElement("div");
  bubble.className="msg-bubble"+(isErr?" error":"");
  bubble.innerHTML=renderContent(content)+'<span class="time">'+fmtTime(ts)+'</span>';
  row.appendChild(bubble);
  msgsEl.appendChild(row);msgsEl.scrollTop=msgsEl.scrollHeight;
}
function showTyping(){typingEl.textContent="El asistente está escribiendo..."}
function hideTyping(){typingEl.textContent=""}
async function send(){
  const m=input.value.trim();if(!m||busy)return;
  busy=true;btn.disabled=true;input.value="";
  addMsg("user",m,Date.now(),false);showTyping();
  try{
    const r=await fetch("/chat/send",{method:"POST",headers:{"Content-Type":"application/json"},body:JSON.stringify({message:m})});
    if(r.status===401){window.location.href="/login";return}
    const d=await r.json();
    if(!r.ok)throw new Error(d.error||r.statusText);
    addMsg("assistant",d.content,d.timestamp,d.error);
  }catch(e){addMsg("assistant","Lo siento, ha ocurrido un error. Por favor, inténtalo de nuevo.",Date.now(),true)}
  hideTyping();busy=false;btn.disabled=false;input.focus();
}
async function loadHistory(){
  try{
    const r=await fetch("/chat/poll");
    if(r.status===401){window.location.href="/login";return}
    const list=await r.json();
    for(const m of list)addMsg(m.role,m.content,m.timestamp,m.error);
  }catch(e){}
}
async function loadTheme(){
  try{
    const r=await fetch("/prefs/theme");
    const d=await r.json();
    dark=!!d.dark_mode;
    document.body.classList.toggle("dark",dark);
  }catch(e){}
}
async function toggleTheme(){
  dark=!dark;
  document.body.classList.toggle("dark",dark);
  try{await fetch("/prefs/theme",{method:"PUT",headers:{"Content-Type":"application/json"},body:JSON.stringify({dark_mode:dark})})}catch(e){}
}
async function share(){
  try{
    const r=await fetch("/chat/share",{method:"POST"});
    const d=await r.json();
    addMsg("assistant",d.content,d.timestamp,d.error);
  }catch(e){addMsg("assistant","No se pudo compartir la conversación.",Date.now(),true)}
}
async function clearChat(){
  if(!confirm("¿Borrar toda la conversación?"))return;
  try{await fetch("/chat/clear",{method:"POST"})}catch(e){return}
  msgsEl.innerHTML="";msgsEl.appendChild(emptyState);
}
btn.onclick=send;
input.onkeydown=e=>{if(e.key==="Enter"&&!e.shiftKey){e.preventDefault();send()}};
input.oninput=()=>{input.style.height="auto";input.style.height=Math.min(input.scrollHeight,120)+"px"};
document.getElementById("theme-btn").onclick=toggleTheme;
document.getElementById("export-btn").onclick=()=>{window.location.href="/chat/export"};
document.getElementById("share-btn").onclick=share;
document.getElementById("clear-btn").onclick=clearChat;
loadTheme();loadHistory();input.focus();
</script>
</body>
</html>`
