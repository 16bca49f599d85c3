// Package pipeline — DSL для описания и запуска pipeline сборки/деплоя.
//
// # Обзор
//
// План (Plan) — неизменяемое дерево узлов:
//
//	Stage       — именованная обёртка над под-планом
//	Command     — описание shell-команды (не выполняется)
//	Action      — произвольный побочный эффект (ActionFunc)
//	Parallel    — дети выполняются параллельно
//	Sequential  — дети выполняются по очереди
//	Recover     — основная ветка, при ошибке — fallback
//
// План собирается конструкторами (Stage, Cmd, Action) и комбинаторами
// (Then, And, Recover) и потребляется двумя независимыми интерпретаторами:
// Describe рисует дерево, Run выполняет действия.
//
//	deployment := pipeline.Pipe(
//	    pipeline.Stage("Build", pipeline.Cmd("npm run build")),
//	    pipeline.Then(pipeline.Stage("Test", pipeline.Pipe(
//	        pipeline.Stage("Unit test", pipeline.Cmd("npm run test:unit")),
//	        pipeline.And(pipeline.Stage("Integration test", pipeline.Cmd("npm run test:integration"))),
//	    ))),
//	    pipeline.Then(pipeline.Pipe(
//	        pipeline.Stage("Release", pipeline.Action(deploy)),
//	        pipeline.Recover(pipeline.Stage("Rollback", pipeline.Action(rollback))),
//	    )),
//	)
//
//	fmt.Println(pipeline.Describe(deployment))
//	err := pipeline.Run(ctx, deployment)
//
// # Комбинаторы
//
// Then и And "сплющивают" узлы своего вида: Then(c)(Then(b)(a)) и
// Then(Then(c)(b))(a) дают один Sequential с детьми [a, b, c].
//
// # Выполнение
//
// Executor обходит план:
//   - Stage и Command не добавляют ошибок (Command — заглушка)
//   - Action вызывает ActionFunc; panic превращается в ErrActionPanic
//   - Parallel запускает детей через errgroup, первая ошибка отменяет контекст
//   - Sequential в режиме SequentialStrict выполняет детей строго по очереди,
//     в режиме SequentialConcurrent — так же, как Parallel
//   - Recover запускает fallback только если основная ветка упала
//     и контекст run не отменён
//
// Retry нет: ошибка поднимается вверх до ближайшего Recover
// или возвращается из Run.
package pipeline
