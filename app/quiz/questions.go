package quiz

// Questions is the fixed questionnaire, asked in order.
var Questions = []string{
	"1️⃣ Как вас зовут?",
	"2️⃣ Какая ниша/сфера?",
	"3️⃣ Главная цель?",
	"4️⃣ Бюджет (примерно)?",
	"5️⃣ Сроки запуска?",
	"6️⃣ Есть сайт? (да/нет + ссылка)",
	"7️⃣ Как связаться? (телеграм/почта)",
}
