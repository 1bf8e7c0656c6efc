package bot

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"carteira/internal/core"
)

// Reply texts, kept in Portuguese as the bot's audience expects.

const (
	msgInvalidAmount = "❌ *Valor inválido!*\n\n" +
		"Use números com ponto ou vírgula (ex: 100.50 ou 100,50)"

	msgEmptyStatement = "📭 *Nenhuma transação encontrada.*\n\n" +
		"Use `/receita` ou `/gasto` para adicionar transações."

	msgEmptyBackup = "📭 *Nenhuma transação para backup.*"

	msgInternalError = "❌ Erro interno. Tente novamente."
)

func renderWelcome(displayName string, receitas, gastos []string) string {
	return fmt.Sprintf(`🏦 *Olá, %s! Bem-vindo ao Controle Financeiro Pessoal*

*Comandos disponíveis:*
• `+"`/receita [valor] [categoria] [descrição]`"+` - Adicionar receita
• `+"`/gasto [valor] [categoria] [descrição]`"+` - Adicionar gasto
• `+"`/saldo`"+` - Ver saldo atual
• `+"`/extrato`"+` - Ver últimas transações
• `+"`/categorias`"+` - Ver categorias disponíveis
• `+"`/backup`"+` - Gerar backup Excel
• `+"`/ajuda`"+` - Ver esta mensagem

*Exemplos:*
`+"`/receita 1500.00 salario Salário mensal`"+`
`+"`/gasto 50.00 alimentacao Almoço restaurante`"+`

*Categorias disponíveis:*
*Receitas:* %s
*Gastos:* %s`,
		displayName, strings.Join(receitas, ", "), strings.Join(gastos, ", "))
}

func renderUsage(kind core.Kind) string {
	if kind == core.KindIncome {
		return "❌ *Formato incorreto!*\n\n" +
			"*Use:* `/receita [valor] [categoria] [descrição]`\n" +
			"*Exemplo:* `/receita 1500.00 salario Salário mensal`"
	}
	return "❌ *Formato incorreto!*\n\n" +
		"*Use:* `/gasto [valor] [categoria] [descrição]`\n" +
		"*Exemplo:* `/gasto 50.00 alimentacao Almoço`"
}

func renderInvalidCategory(e *core.InvalidCategoryError) string {
	label := "gasto"
	if e.Kind == core.KindIncome {
		label = "receita"
	}
	return fmt.Sprintf("⚠️ *Categoria '%s' não encontrada.*\n\n*Categorias de %s:* %s",
		e.Category, label, strings.Join(e.Allowed, ", "))
}

func renderRecorded(tx core.Transaction) string {
	kindLabel, emoji := "Gasto", "💸"
	if tx.Kind == core.KindIncome {
		kindLabel, emoji = "Receita", "💵"
	}
	return fmt.Sprintf("✅ *%s adicionado com sucesso!*\n\n"+
		"%s Valor: %s\n"+
		"📂 Categoria: %s\n"+
		"📝 Descrição: %s",
		kindLabel, emoji, core.FormatBRL(tx.Amount), title(tx.Category), tx.Note)
}

func renderSummary(displayName string, s core.Summary, now time.Time) string {
	emoji := "💰"
	if s.Balance.Sign() < 0 {
		emoji = "⚠️"
	}
	return fmt.Sprintf(`%s *Resumo Financeiro - %s*

💵 *Receitas:* %s
💸 *Gastos:* %s
📊 *Saldo:* %s

_Atualizado em %s_`,
		emoji, displayName,
		core.FormatBRL(s.TotalIncome),
		core.FormatBRL(s.TotalExpense),
		core.FormatBRL(s.Balance),
		now.Format("02/01/2006 às 15:04"))
}

func renderStatement(rows []core.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Últimas %d Transações:*\n\n", len(rows))
	for _, tx := range rows {
		emoji := "💸"
		if tx.Kind == core.KindIncome {
			emoji = "💵"
		}
		note := tx.Note
		if len([]rune(note)) > 30 {
			note = string([]rune(note)[:30]) + "..."
		}
		fmt.Fprintf(&b, "%s *%s* - %s\n", emoji, tx.CreatedAt.Format("02/01"), core.FormatBRL(tx.Amount))
		fmt.Fprintf(&b, "   %s - %s\n\n", title(tx.Category), note)
	}
	return b.String()
}

func renderCategories(receitas, gastos []string) string {
	return fmt.Sprintf(`📂 *Categorias Disponíveis*

💵 *Receitas:*
%s

💸 *Gastos:*
%s

_Use estas categorias nos comandos `+"`/receita`"+` e `+"`/gasto`"+`_`,
		strings.Join(receitas, ", "), strings.Join(gastos, ", "))
}

func renderBackupCaption(count int) string {
	return fmt.Sprintf("📊 *Backup das suas transações*\n\nTotal: %d transações", count)
}

// title uppercases the first letter of each word.
func title(s string) string {
	prev := ' '
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(prev) {
			prev = r
			return unicode.ToUpper(r)
		}
		prev = r
		return r
	}, s)
}
