package server

// WEB CHAT WIDGET

// widgetHTML is the self-contained chat page served at "/". It talks to
// POST /chat and keeps a per-tab session id so conversation memory works
// from the browser too.
const widgetHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Photocopy Chatbot</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; }
        .chat-container { border: 1px solid #ddd; height: 400px; overflow-y: auto; padding: 10px; margin: 10px 0; }
        .message { margin: 10px 0; padding: 10px; border-radius: 5px; white-space: pre-wrap; }
        .user { background-color: #007bff; color: white; text-align: right; }
        .bot { background-color: #f8f9fa; }
        input[type="text"] { width: 70%; padding: 10px; }
        button { width: 25%; padding: 10px; background-color: #007bff; color: white; border: none; cursor: pointer; }
    </style>
</head>
<body>
    <h1>🖨️ ระบบคำนวณราคาถ่ายเอกสาร</h1>
    <div class="chat-container" id="chatContainer">
        <div class="message bot">สวัสดีค่ะ! ยินดีให้บริการคำนวณราคาถ่ายเอกสาร
ลองถามเช่น:
• "A4 ขาวดำ หน้าเดียว 50 หน้า"
• "A3 สี สองหน้า 20 แผ่น"
• "สวัสดี" (ดูคำแนะนำ)</div>
    </div>
    <div>
        <input type="text" id="messageInput" placeholder="พิมพ์คำถามของคุณ..." onkeypress="if(event.key==='Enter') sendMessage()">
        <button onclick="sendMessage()">ส่ง</button>
    </div>

    <script>
        const sessionId = 'web-' + Math.random().toString(36).slice(2);

        function addMessage(text, isUser) {
            const chatContainer = document.getElementById('chatContainer');
            const messageDiv = document.createElement('div');
            messageDiv.className = 'message ' + (isUser ? 'user' : 'bot');
            messageDiv.textContent = text;
            chatContainer.appendChild(messageDiv);
            chatContainer.scrollTop = chatContainer.scrollHeight;
        }

        async function sendMessage() {
            const input = document.getElementById('messageInput');
            const message = input.value.trim();
            if (!message) return;

            addMessage(message, true);
            input.value = '';

            try {
                const response = await fetch('/chat', {
                    method: 'POST',
                    headers: { 'Content-Type': 'application/json' },
                    body: JSON.stringify({ message: message, session_id: sessionId })
                });
                const data = await response.json();
                addMessage(data.reply, false);
            } catch (error) {
                addMessage('ขออภัย เกิดข้อผิดพลาด กรุณาลองใหม่อีกครั้ง', false);
            }
        }
    </script>
</body>
</html>
`
